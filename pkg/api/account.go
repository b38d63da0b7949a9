package api

import (
	"context"
	"net/http"
	"net/url"
)

// GetBillingUsage returns consumption for the current billing period.
func (c *Client) GetBillingUsage(ctx context.Context) (*BillingUsage, error) {
	var usage BillingUsage
	if err := c.do(ctx, http.MethodGet, "/billing/usage", nil, nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// GetAgentAnalytics aggregates run outcomes for an agent. from and to are
// RFC 3339 dates; either may be empty for an open-ended window.
func (c *Client) GetAgentAnalytics(ctx context.Context, agentID, from, to string) (*AgentAnalytics, error) {
	q := url.Values{}
	setParam(q, "from", from)
	setParam(q, "to", to)
	var analytics AgentAnalytics
	if err := c.do(ctx, http.MethodGet, "/analytics/agent/"+url.PathEscape(agentID), q, nil, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

// ListProxyPools returns the proxy pools runs can be pinned to.
func (c *Client) ListProxyPools(ctx context.Context) ([]ProxyPool, error) {
	var pools []ProxyPool
	if err := c.do(ctx, http.MethodGet, "/proxypool/all", nil, nil, &pools); err != nil {
		return nil, err
	}
	return pools, nil
}
