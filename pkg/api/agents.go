package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListAgentsOptions filters and pages the agent catalogue.
type ListAgentsOptions struct {
	Status         string
	SpaceID        string
	Name           string
	ConfigType     string
	SortColumn     string
	SortOrder      string
	PageIndex      int
	RecordsPerPage int
}

func (o ListAgentsOptions) query() url.Values {
	q := url.Values{}
	setParam(q, "status", o.Status)
	setParam(q, "spaceId", o.SpaceID)
	setParam(q, "name", o.Name)
	setParam(q, "configType", o.ConfigType)
	setParam(q, "sortColumn", o.SortColumn)
	setParam(q, "sortOrder", o.SortOrder)
	if o.PageIndex > 0 {
		q.Set("pageIndex", strconv.Itoa(o.PageIndex))
	}
	if o.RecordsPerPage > 0 {
		q.Set("recordsPerPage", strconv.Itoa(o.RecordsPerPage))
	}
	return q
}

func setParam(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// ListAgents returns one page of agents matching the filter.
func (c *Client) ListAgents(ctx context.Context, opts ListAgentsOptions) (*AgentPage, error) {
	var page AgentPage
	if err := c.do(ctx, http.MethodGet, "/agent/all", opts.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAgent fetches a single agent by identifier.
func (c *Client) GetAgent(ctx context.Context, id string) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodGet, "/agent/"+url.PathEscape(id), nil, nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// StartRun launches an agent. This mutates upstream state and is never
// retried automatically.
func (c *Client) StartRun(ctx context.Context, agentID string, opts StartRunOptions) (*Run, error) {
	var run Run
	if err := c.do(ctx, http.MethodPost, "/agent/"+url.PathEscape(agentID)+"/start", nil, opts, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// StopRun requests a graceful stop of a run.
func (c *Client) StopRun(ctx context.Context, agentID, runID string) error {
	path := "/agent/" + url.PathEscape(agentID) + "/run/" + url.PathEscape(runID) + "/stop"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// KillRun terminates a run immediately.
func (c *Client) KillRun(ctx context.Context, agentID, runID string) error {
	path := "/agent/" + url.PathEscape(agentID) + "/run/" + url.PathEscape(runID) + "/kill"
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// ListRuns returns one page of an agent's run history.
func (c *Client) ListRuns(ctx context.Context, agentID string, pageIndex, recordsPerPage int) (*RunPage, error) {
	q := url.Values{}
	if pageIndex > 0 {
		q.Set("pageIndex", strconv.Itoa(pageIndex))
	}
	if recordsPerPage > 0 {
		q.Set("recordsPerPage", strconv.Itoa(recordsPerPage))
	}
	var page RunPage
	if err := c.do(ctx, http.MethodGet, "/agent/"+url.PathEscape(agentID)+"/run/all", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
