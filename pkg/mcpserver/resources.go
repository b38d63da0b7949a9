package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

const agentResourcePrefix = "scrapeworks://agent/"

func (t *toolset) registerResources(s *server.MCPServer) {
	s.AddResource(mcp.NewResource("scrapeworks://agents", "Agent Catalogue",
		mcp.WithResourceDescription("All agents visible to the session credential, as JSON."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		page, err := t.client.ListAgents(ctx, api.ListAgentsOptions{})
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}
		return jsonContents(request.Params.URI, page.Items)
	})

	s.AddResource(mcp.NewResource("scrapeworks://spaces", "Space Catalogue",
		mcp.WithResourceDescription("All spaces visible to the session credential, as JSON."),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		spaces, err := t.client.ListSpaces(ctx)
		if err != nil {
			return nil, fmt.Errorf("list spaces: %w", err)
		}
		return jsonContents(request.Params.URI, spaces)
	})

	s.AddResourceTemplate(mcp.NewResourceTemplate(agentResourcePrefix+"{id}", "Agent Definition",
		mcp.WithTemplateDescription("One agent's full definition, as JSON."),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, agentResourcePrefix)
		if id == "" || id == request.Params.URI {
			return nil, fmt.Errorf("malformed agent resource URI %q", request.Params.URI)
		}
		agent, err := t.client.GetAgent(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get agent %s: %w", id, err)
		}
		return jsonContents(request.Params.URI, agent)
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
