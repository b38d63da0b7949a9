package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

func (t *toolset) registerScheduleTools(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_schedules",
		mcp.WithDescription("List every recurring run schedule."),
	), t.handleListSchedules)

	s.AddTool(mcp.NewTool("get_schedule",
		mcp.WithDescription("Get one schedule by identifier."),
		mcp.WithString("schedule_id", mcp.Required(), mcp.Description("Schedule identifier")),
	), t.handleGetSchedule)

	s.AddTool(mcp.NewTool("create_schedule",
		mcp.WithDescription("Create a recurring run schedule for an agent."),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent to schedule")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schedule name")),
		mcp.WithString("cron", mcp.Required(), mcp.Description("Cron expression, five fields")),
		mcp.WithString("time_zone", mcp.Description("IANA time zone, default UTC")),
		mcp.WithBoolean("enabled", mcp.Description("Whether the schedule starts enabled"), mcp.DefaultBool(true)),
	), t.handleCreateSchedule)

	s.AddTool(mcp.NewTool("update_schedule",
		mcp.WithDescription("Replace a schedule definition."),
		mcp.WithString("schedule_id", mcp.Required(), mcp.Description("Schedule identifier")),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent to schedule")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schedule name")),
		mcp.WithString("cron", mcp.Required(), mcp.Description("Cron expression, five fields")),
		mcp.WithString("time_zone", mcp.Description("IANA time zone, default UTC")),
		mcp.WithBoolean("enabled", mcp.Description("Whether the schedule is enabled"), mcp.DefaultBool(true)),
	), t.handleUpdateSchedule)

	s.AddTool(mcp.NewTool("delete_schedule",
		mcp.WithDescription("Delete a schedule."),
		mcp.WithString("schedule_id", mcp.Required(), mcp.Description("Schedule identifier")),
	), t.handleDeleteSchedule)
}

func (t *toolset) handleListSchedules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	schedules, err := t.client.ListSchedules(ctx)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatSchedules(schedules)), nil
}

func (t *toolset) handleGetSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("schedule_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	schedule, err := t.client.GetSchedule(ctx, id)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(formatSchedule(schedule)), nil
}

func scheduleSpecFromRequest(req mcp.CallToolRequest) (api.ScheduleSpec, error) {
	agentID, err := req.RequireString("agent_id")
	if err != nil {
		return api.ScheduleSpec{}, err
	}
	name, err := req.RequireString("name")
	if err != nil {
		return api.ScheduleSpec{}, err
	}
	cron, err := req.RequireString("cron")
	if err != nil {
		return api.ScheduleSpec{}, err
	}
	return api.ScheduleSpec{
		AgentID:   agentID,
		Name:      name,
		Cron:      cron,
		TimeZone:  req.GetString("time_zone", ""),
		IsEnabled: req.GetBool("enabled", true),
	}, nil
}

func (t *toolset) handleCreateSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := scheduleSpecFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	schedule, err := t.client.CreateSchedule(ctx, spec)
	if err != nil {
		return resultFromError(err), nil
	}
	t.logger.Info("schedule created", "schedule_id", schedule.ID, "agent_id", spec.AgentID)
	return mcp.NewToolResultText("Created schedule " + schedule.ID + ".\n" + formatSchedule(schedule)), nil
}

func (t *toolset) handleUpdateSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("schedule_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spec, err := scheduleSpecFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	schedule, err := t.client.UpdateSchedule(ctx, id, spec)
	if err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText("Updated schedule " + id + ".\n" + formatSchedule(schedule)), nil
}

func (t *toolset) handleDeleteSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("schedule_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.client.DeleteSchedule(ctx, id); err != nil {
		return resultFromError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Schedule %s deleted.", id)), nil
}
