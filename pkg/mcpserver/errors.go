package mcpserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/scrapeworks/scrapeworks-mcp/pkg/api"
)

// resultFromError maps a client failure onto a structured tool error. Callers
// always get an error flag plus a descriptive message; raw upstream payloads
// never travel further than the classifier's bounded excerpt.
func resultFromError(err error) *mcp.CallToolResult {
	if errors.Is(err, api.ErrNoCredentials) {
		return mcp.NewToolResultError("No credentials configured. Set SCRAPEWORKS_API_KEY or reconnect with a bearer token.")
	}

	var rle *api.RateLimitError
	if errors.As(err, &rle) {
		if rle.RetryAfter != nil {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Rate limited by the control plane. Try again in %s.", rle.RetryAfter.Round(time.Second)))
		}
		return mcp.NewToolResultError("Rate limited by the control plane. Wait a moment and try again.")
	}

	var timeoutErr *api.TimeoutError
	if errors.As(err, &timeoutErr) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"The control plane did not respond within %s (%s).", timeoutErr.Budget, timeoutErr.Endpoint))
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsUnauthorized():
			return mcp.NewToolResultError("Unauthorized: check that the API key or bearer token is valid.")
		case apiErr.IsForbidden():
			return mcp.NewToolResultError("Forbidden: the credential lacks access to this resource.")
		case apiErr.IsNotFound():
			return mcp.NewToolResultError("Not found: " + apiErr.Message)
		case apiErr.IsServerError():
			return mcp.NewToolResultError("The control plane reported a server error: " + apiErr.Message)
		default:
			return mcp.NewToolResultError(apiErr.Message)
		}
	}

	return mcp.NewToolResultError("Request failed: " + err.Error())
}
