package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

func (t *toolset) registerAgentTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List scraping agents, optionally filtered by status, space, name, or config type."),
		mcp.WithString("status", mcp.Description("Filter by agent status"), mcp.Enum("active", "paused", "archived")),
		mcp.WithString("space_id", mcp.Description("Filter by space identifier")),
		mcp.WithString("name", mcp.Description("Filter by name substring")),
		mcp.WithString("config_type", mcp.Description("Filter by configuration type")),
		mcp.WithString("sort_column", mcp.Description("Column to sort by")),
		mcp.WithString("sort_order", mcp.Description("Sort direction"), mcp.Enum("asc", "desc")),
		mcp.WithNumber("page_index", mcp.Description("Zero-based page index")),
		mcp.WithNumber("records_per_page", mcp.Description("Page size")),
	), t.handleListAgents)

	s.AddTool(mcp.NewTool("get_agent",
		mcp.WithDescription("Get the full definition and status of one agent."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
	), t.handleGetAgent)

	s.AddTool(mcp.NewTool("start_agent",
		mcp.WithDescription("Start a run of an agent. This launches a scrape job and consumes credits; it is never retried automatically."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
		mcp.WithNumber("parallelism", mcp.Description("Number of parallel branches")),
		mcp.WithNumber("parallel_max_concurrency", mcp.Description("Concurrency ceiling across branches")),
		mcp.WithString("parallel_export", mcp.Description("Export mode for parallel runs")),
		mcp.WithString("proxy_pool_id", mcp.Description("Proxy pool to route traffic through")),
		mcp.WithObject("input_parameters", mcp.Description("Agent input parameters as key/value pairs")),
		mcp.WithNumber("timeout", mcp.Description("Run timeout in seconds")),
		mcp.WithBoolean("is_exclusive", mcp.Description("Refuse to start while another run is active")),
		mcp.WithBoolean("is_wait_on_failure", mcp.Description("Hold the run open on failure for inspection")),
		mcp.WithBoolean("is_run_synchronously", mcp.Description("Block until the run completes")),
		mcp.WithString("log_level", mcp.Description("Run log level"), mcp.Enum("debug", "info", "warn", "error")),
		mcp.WithString("log_mode", mcp.Description("Run log destination mode")),
	), t.handleStartAgent)

	s.AddTool(mcp.NewTool("stop_run",
		mcp.WithDescription("Request a graceful stop of a run."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run identifier")),
	), t.handleStopRun)

	s.AddTool(mcp.NewTool("kill_run",
		mcp.WithDescription("Terminate a run immediately, discarding in-flight work."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("Run identifier")),
	), t.handleKillRun)

	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List the run history of an agent."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent identifier")),
		mcp.WithNumber("page_index", mcp.Description("Zero-based page index")),
		mcp.WithNumber("records_per_page", mcp.Description("Page size")),
	), t.handleListRuns)
}

func (t *toolset) handleListAgents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := api.ListAgentsOptions{
		Status:         req.GetString("status", ""),
		SpaceID:        req.GetString("space_id", ""),
		Name:           req.GetString("name", ""),
		ConfigType:     req.GetString("config_type", ""),
		SortColumn:     req.GetString("sort_column", ""),
		SortOrder:      req.GetString("sort_order", ""),
		PageIndex:      req.GetInt("page_index", 0),
		RecordsPerPage: req.GetInt("records_per_page", 0),
	}
	page, err := t.client.ListAgents(ctx, opts)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatAgentPage(page)), nil
}

func (t *toolset) handleGetAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	agent, err := t.client.GetAgent(ctx, id)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatAgent(agent)), nil
}

func (t *toolset) handleStartAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := api.StartRunOptions{
		Parallelism:            req.GetInt("parallelism", 0),
		ParallelMaxConcurrency: req.GetInt("parallel_max_concurrency", 0),
		ParallelExport:         req.GetString("parallel_export", ""),
		ProxyPoolID:            req.GetString("proxy_pool_id", ""),
		Timeout:                req.GetInt("timeout", 0),
		IsExclusive:            req.GetBool("is_exclusive", false),
		IsWaitOnFailure:        req.GetBool("is_wait_on_failure", false),
		IsRunSynchronously:     req.GetBool("is_run_synchronously", false),
		LogLevel:               req.GetString("log_level", ""),
		LogMode:                req.GetString("log_mode", ""),
	}
	if raw, ok := req.GetArguments()["input_parameters"].(map[string]any); ok && len(raw) > 0 {
		opts.InputParameters = make(map[string]string, len(raw))
		for k, v := range raw {
			opts.InputParameters[k] = fmt.Sprint(v)
		}
	}

	run, err := t.client.StartRun(ctx, id, opts)
	if err != nil {
		return resultFromError(err), nil
	}
	t.logger.Info("run started", "agent_id", id, "run_id", run.ID)
	return mcp.NewToolResultText(formatRunStarted(run)), nil
}

func (t *toolset) handleStopRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	runID, err := req.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.client.StopRun(ctx, agentID, runID); err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stop requested for run %s of agent %s.", runID, agentID)), nil
}

func (t *toolset) handleKillRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	runID, err := req.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.client.KillRun(ctx, agentID, runID); err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Run %s of agent %s killed.", runID, agentID)), nil
}

func (t *toolset) handleListRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID, err := req.RequireString("agent_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := t.client.ListRuns(ctx, agentID,
		req.GetInt("page_index", 0), req.GetInt("records_per_page", 0))
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatRunPage(agentID, page)), nil
}
