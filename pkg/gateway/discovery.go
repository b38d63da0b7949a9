package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// protectedResourceMetadata is the RFC 9728 protected-resource discovery
// document, naming this server and its external authorization server.
type protectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
}

// authorizationServerMetadata is the RFC 8414 authorization-server discovery
// document. Served as a convenience for clients that resolve it relative to
// this host; the issuer remains the external authorization server.
type authorizationServerMetadata struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	RegistrationEndpoint          string   `json:"registration_endpoint,omitempty"`
	ScopesSupported               []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported        []string `json:"response_types_supported"`
	GrantTypesSupported           []string `json:"grant_types_supported,omitempty"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported"`

	// ClientID is served when the deployment pins a fallback client, for
	// MCP clients that skip dynamic registration.
	ClientID string `json:"client_id,omitempty"`
}

var supportedScopes = []string{"mcp:tools", "mcp:resources", "mcp:prompts"}

// canonicalURL computes this server's externally visible base URL. Forwarded
// headers are honored only when the deployment declares a trusted reverse
// proxy in front of it.
func (g *Gateway) canonicalURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if g.cfg.TrustProxy {
		if v := r.Header.Get("X-Forwarded-Proto"); v != "" {
			scheme = v
		}
		if v := r.Header.Get("X-Forwarded-Host"); v != "" {
			host = v
		}
	}
	return scheme + "://" + host
}

func (g *Gateway) handleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	base := g.canonicalURL(r)
	writeJSON(w, http.StatusOK, protectedResourceMetadata{
		Resource:               base + "/mcp",
		AuthorizationServers:   []string{g.cfg.OAuthIssuer},
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        supportedScopes,
	}, g.logger)
}

func (g *Gateway) handleAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	issuer := g.cfg.OAuthIssuer
	writeJSON(w, http.StatusOK, authorizationServerMetadata{
		Issuer:                        issuer,
		AuthorizationEndpoint:         issuer + "/oauth/authorize",
		TokenEndpoint:                 issuer + "/oauth/token",
		RegistrationEndpoint:          issuer + "/oauth/register",
		ScopesSupported:               supportedScopes,
		ResponseTypesSupported:        []string{"code"},
		GrantTypesSupported:           []string{"authorization_code", "refresh_token"},
		CodeChallengeMethodsSupported: []string{"S256"},
		ClientID:                      g.cfg.OAuthClientID,
	}, g.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, map[string]string{"error": message}, logger)
}
