package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListSchedules returns every schedule visible to the credential.
func (c *Client) ListSchedules(ctx context.Context) ([]Schedule, error) {
	var schedules []Schedule
	if err := c.do(ctx, http.MethodGet, "/schedule/all", nil, nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// GetSchedule fetches a single schedule by identifier.
func (c *Client) GetSchedule(ctx context.Context, id string) (*Schedule, error) {
	var schedule Schedule
	if err := c.do(ctx, http.MethodGet, "/schedule/"+url.PathEscape(id), nil, nil, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// CreateSchedule registers a new schedule. Mutates upstream state; one attempt.
func (c *Client) CreateSchedule(ctx context.Context, spec ScheduleSpec) (*Schedule, error) {
	var schedule Schedule
	if err := c.do(ctx, http.MethodPost, "/schedule", nil, spec, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// UpdateSchedule replaces a schedule definition. PUT is idempotent and
// eligible for retry.
func (c *Client) UpdateSchedule(ctx context.Context, id string, spec ScheduleSpec) (*Schedule, error) {
	var schedule Schedule
	if err := c.do(ctx, http.MethodPut, "/schedule/"+url.PathEscape(id), nil, spec, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/schedule/"+url.PathEscape(id), nil, nil, nil)
}
