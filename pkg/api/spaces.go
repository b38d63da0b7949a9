package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListSpaces returns every space visible to the credential.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	var spaces []Space
	if err := c.do(ctx, http.MethodGet, "/space/all", nil, nil, &spaces); err != nil {
		return nil, err
	}
	return spaces, nil
}

// GetSpace fetches a single space by identifier.
func (c *Client) GetSpace(ctx context.Context, id string) (*Space, error) {
	var space Space
	if err := c.do(ctx, http.MethodGet, "/space/"+url.PathEscape(id), nil, nil, &space); err != nil {
		return nil, err
	}
	return &space, nil
}
