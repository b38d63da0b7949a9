package mcpserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

// Human-readable renderings of API payloads. Plain text, one record per
// block, so they stay useful inside a model conversation.

func formatAgentPage(page *api.AgentPage) string {
	if len(page.Items) == 0 {
		return "No agents matched the filter."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d agent(s), page %d of %d total:\n", len(page.Items), page.PageIndex, page.TotalCount)
	for _, a := range page.Items {
		fmt.Fprintf(&b, "- %s (%s) status=%s space=%s type=%s\n", a.Name, a.ID, a.Status, a.SpaceID, a.ConfigType)
	}
	return b.String()
}

func formatAgent(a *api.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Agent %s (%s)\n", a.Name, a.ID)
	fmt.Fprintf(&b, "  status: %s\n  space: %s\n  config type: %s\n", a.Status, a.SpaceID, a.ConfigType)
	if a.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", a.Description)
	}
	if !a.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "  created: %s\n", a.CreatedAt.Format(time.RFC3339))
	}
	return b.String()
}

func formatRunStarted(r *api.Run) string {
	return fmt.Sprintf("Run %s started for agent %s (status: %s).", r.ID, r.AgentID, r.Status)
}

func formatRunPage(agentID string, page *api.RunPage) string {
	if len(page.Items) == 0 {
		return fmt.Sprintf("Agent %s has no recorded runs.", agentID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d run(s) for agent %s (%d total):\n", len(page.Items), agentID, page.TotalCount)
	for _, r := range page.Items {
		fmt.Fprintf(&b, "- %s status=%s rows=%d errors=%d", r.ID, r.Status, r.RowCount, r.ErrorCount)
		if !r.StartedAt.IsZero() {
			fmt.Fprintf(&b, " started=%s", r.StartedAt.Format(time.RFC3339))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatSchedules(schedules []api.Schedule) string {
	if len(schedules) == 0 {
		return "No schedules configured."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d schedule(s):\n", len(schedules))
	for _, s := range schedules {
		state := "disabled"
		if s.IsEnabled {
			state = "enabled"
		}
		fmt.Fprintf(&b, "- %s (%s) agent=%s cron=%q %s\n", s.Name, s.ID, s.AgentID, s.Cron, state)
	}
	return b.String()
}

func formatSchedule(s *api.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule %s (%s)\n", s.Name, s.ID)
	fmt.Fprintf(&b, "  agent: %s\n  cron: %q\n  enabled: %t\n", s.AgentID, s.Cron, s.IsEnabled)
	if s.TimeZone != "" {
		fmt.Fprintf(&b, "  time zone: %s\n", s.TimeZone)
	}
	if s.NextRunAt != "" {
		fmt.Fprintf(&b, "  next run: %s\n", s.NextRunAt)
	}
	return b.String()
}

func formatSpaces(spaces []api.Space) string {
	if len(spaces) == 0 {
		return "No spaces visible to this credential."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d space(s):\n", len(spaces))
	for _, s := range spaces {
		fmt.Fprintf(&b, "- %s (%s) agents=%d\n", s.Name, s.ID, s.AgentCount)
	}
	return b.String()
}

func formatSpace(s *api.Space) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Space %s (%s)\n", s.Name, s.ID)
	if s.Description != "" {
		fmt.Fprintf(&b, "  description: %s\n", s.Description)
	}
	fmt.Fprintf(&b, "  agents: %d\n", s.AgentCount)
	return b.String()
}

func formatBillingUsage(u *api.BillingUsage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Billing period %s to %s\n", u.PeriodStart, u.PeriodEnd)
	fmt.Fprintf(&b, "  page credits: %d used of %d\n", u.UsedCredits, u.PageCredits)
	fmt.Fprintf(&b, "  export rows: %d\n", u.ExportRows)
	if u.EstimatedSpend > 0 {
		fmt.Fprintf(&b, "  estimated spend: %.2f\n", u.EstimatedSpend)
	}
	return b.String()
}

func formatAgentAnalytics(a *api.AgentAnalytics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analytics for agent %s\n", a.AgentID)
	fmt.Fprintf(&b, "  runs: %d (%d succeeded, %d failed)\n", a.RunCount, a.SuccessCount, a.FailureCount)
	if a.AvgDurationSec > 0 {
		fmt.Fprintf(&b, "  average duration: %.1fs\n", a.AvgDurationSec)
	}
	if a.RowsExtracted > 0 {
		fmt.Fprintf(&b, "  rows extracted: %d\n", a.RowsExtracted)
	}
	return b.String()
}

func formatProxyPools(pools []api.ProxyPool) string {
	if len(pools) == 0 {
		return "No proxy pools available."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d proxy pool(s):\n", len(pools))
	for _, p := range pools {
		shared := ""
		if p.IsShared {
			shared = " (shared)"
		}
		fmt.Fprintf(&b, "- %s (%s) region=%s size=%d%s\n", p.Name, p.ID, p.Region, p.Size, shared)
	}
	return b.String()
}
