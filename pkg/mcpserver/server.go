// Package mcpserver assembles the MCP surface: the tool catalogue, resources,
// and prompts, all bound to one authenticated control-plane client.
package mcpserver

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	scrapeworks "github.com/scrapeworks/scrapeworks-mcp"
	"github.com/scrapeworks/scrapeworks-mcp/internal/logging"
	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

const instructions = `ScrapeWorks control-plane server. Agents are configured
scraping jobs grouped into spaces; runs are individual executions. Use
list_agents to discover agents, start_agent to launch a run, and the schedule
tools to manage recurring runs. Billing and analytics tools report account
consumption and agent outcomes.`

// Option configures the server assembly.
type Option func(*toolset)

// WithLogger configures structured logging for tool handlers.
func WithLogger(l *slog.Logger) Option {
	return func(t *toolset) { t.logger = l }
}

// toolset carries the per-session client into every handler.
type toolset struct {
	client *api.Client
	logger *slog.Logger
}

// New builds an MCP server instance bound to the given client. Each network
// session gets its own instance; the stdio transport builds exactly one for
// the process lifetime.
func New(client *api.Client, opts ...Option) *server.MCPServer {
	t := &toolset{
		client: client,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	s := server.NewMCPServer("scrapeworks-mcp", scrapeworks.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	t.registerAgentTools(s)
	t.registerScheduleTools(s)
	t.registerAccountTools(s)
	t.registerResources(s)
	t.registerPrompts(s)
	return s
}
