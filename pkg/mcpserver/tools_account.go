package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *toolset) registerAccountTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_spaces",
		mcp.WithDescription("List every space visible to the credential."),
	), t.handleListSpaces)

	s.AddTool(mcp.NewTool("get_space",
		mcp.WithDescription("Get one space by identifier."),
		mcp.WithString("space_id", mcp.Required(), mcp.Description("Space identifier")),
	), t.handleGetSpace)

	s.AddTool(mcp.NewTool("get_billing_usage",
		mcp.WithDescription("Report credit consumption for the current billing period."),
	), t.handleGetBillingUsage)

	s.AddTool(mcp.NewTool("get_agent_analytics",
		mcp.WithDescription("Aggregate run outcomes for one agent over a date window."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
		mcp.WithString("from", mcp.Description("Window start, RFC 3339 date")),
		mcp.WithString("to", mcp.Description("Window end, RFC 3339 date")),
	), t.handleGetAgentAnalytics)

	s.AddTool(mcp.NewTool("list_proxy_pools",
		mcp.WithDescription("List the proxy pools runs can be pinned to."),
	), t.handleListProxyPools)
}

func (t *toolset) handleListSpaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaces, err := t.client.ListSpaces(ctx)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatSpaces(spaces)), nil
}

func (t *toolset) handleGetSpace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("space_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	space, err := t.client.GetSpace(ctx, id)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatSpace(space)), nil
}

func (t *toolset) handleGetBillingUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	usage, err := t.client.GetBillingUsage(ctx)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatBillingUsage(usage)), nil
}

func (t *toolset) handleGetAgentAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	analytics, err := t.client.GetAgentAnalytics(ctx, id,
		req.GetString("from", ""), req.GetString("to", ""))
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatAgentAnalytics(analytics)), nil
}

func (t *toolset) handleListProxyPools(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pools, err := t.client.ListProxyPools(ctx)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatProxyPools(pools)), nil
}
