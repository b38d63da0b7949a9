package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *toolset) registerPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("diagnose_run_failure",
		mcp.WithPromptDescription("Walk through why an agent run failed and what to change."),
		mcp.WithArgument("agent_id", mcp.ArgumentDescription("Agent whose run failed"), mcp.RequiredArgument()),
		mcp.WithArgument("run_id", mcp.ArgumentDescription("The failed run")),
	), t.handleDiagnosePrompt)

	s.AddPrompt(mcp.NewPrompt("plan_extraction",
		mcp.WithPromptDescription("Plan a new extraction: which agent, space, proxy pool, and schedule to use."),
		mcp.WithArgument("target", mcp.ArgumentDescription("Site or data source to extract from"), mcp.RequiredArgument()),
	), t.handlePlanPrompt)
}

func (t *toolset) handleDiagnosePrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	agentID := request.Params.Arguments["agent_id"]
	if agentID == "" {
		return nil, fmt.Errorf("agent_id is required")
	}
	runID := request.Params.Arguments["run_id"]

	text := fmt.Sprintf(
		"Investigate why a run of agent %s failed. Use get_agent to check the agent's configuration, "+
			"list_runs to inspect recent run outcomes, and get_agent_analytics for the failure trend. ", agentID)
	if runID != "" {
		text += fmt.Sprintf("Focus on run %s. ", runID)
	}
	text += "Summarize the likely cause and suggest a concrete configuration or scheduling change."

	return mcp.NewGetPromptResult(
		"Diagnose a failed agent run",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}

func (t *toolset) handlePlanPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := request.Params.Arguments["target"]
	if target == "" {
		return nil, fmt.Errorf("target is required")
	}

	text := fmt.Sprintf(
		"Plan an extraction from %s. Use list_agents to find an existing agent that already covers it, "+
			"list_spaces to pick the right space, and list_proxy_pools to choose egress. "+
			"If a recurring pull makes sense, propose a create_schedule call with a cron expression. "+
			"Check get_billing_usage first so the plan fits the remaining credits.", target)

	return mcp.NewGetPromptResult(
		"Plan a new extraction",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	), nil
}
