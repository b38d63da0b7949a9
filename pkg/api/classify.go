package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxBodyExcerpt bounds how much of an unparseable error body is kept, so a
// full HTML error page never lands in logs or tool output.
const maxBodyExcerpt = 500

// bodyParser extracts a message from one known upstream error shape.
// Parsers are tried in order; the first match wins.
type bodyParser func(body []byte) (string, bool)

var bodyParsers = []bodyParser{
	parseFlatError,
	parseProblemDetails,
	parseStatusDescription,
}

// parseFlatError handles {"statusCode", "statusDescription", "message", "severity"}.
func parseFlatError(body []byte) (string, bool) {
	var v struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.Message == "" {
		return "", false
	}
	return v.Message, true
}

// parseProblemDetails handles the RFC 7807 shape {"type", "title", "status", "detail", "instance"}.
func parseProblemDetails(body []byte) (string, bool) {
	var v struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return "", false
	}
	switch {
	case v.Title != "" && v.Detail != "":
		return v.Title + ": " + v.Detail, true
	case v.Title != "":
		return v.Title, true
	case v.Detail != "":
		return v.Detail, true
	}
	return "", false
}

func parseStatusDescription(body []byte) (string, bool) {
	var v struct {
		StatusDescription string `json:"statusDescription"`
	}
	if err := json.Unmarshal(body, &v); err != nil || v.StatusDescription == "" {
		return "", false
	}
	return v.StatusDescription, true
}

// Classify converts a non-2xx response into a typed error. The body must
// already be read; Classify does not touch resp.Body.
func Classify(endpoint string, resp *http.Response, body []byte) error {
	apiErr := APIError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Message:    errorMessage(resp.StatusCode, body),
		Endpoint:   endpoint,
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			APIError:   apiErr,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	return &apiErr
}

// errorMessage derives the caller-facing message for a failed response.
func errorMessage(statusCode int, body []byte) string {
	for _, parse := range bodyParsers {
		if msg, ok := parse(body); ok {
			return msg
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed != "" && !json.Valid(body) {
		return truncate(trimmed, maxBodyExcerpt)
	}
	return fmt.Sprintf("API Error %d: %s", statusCode, http.StatusText(statusCode))
}

// parseRetryAfter accepts an integer number of seconds or an HTTP date.
// nil means absent or unusable, which is distinct from an immediate hint.
func parseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return nil
		}
		d := time.Duration(secs) * time.Second
		return &d
	}
	if t, err := http.ParseTime(value); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
