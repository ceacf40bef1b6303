package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpbridge/internal/domain"
)

// newSSEAdapter dials the configured endpoint over server-sent events.
// Custom headers and the optional API key ride on every request via a
// decorated round tripper.
func newSSEAdapter(server string, cfg domain.ServerConfig, logger *zap.Logger) Adapter {
	httpClient := &http.Client{
		Transport: buildHeaderTransport(cfg),
	}
	dial := func(ctx context.Context) (*mcp.ClientSession, error) {
		transport := &mcp.SSEClientTransport{
			Endpoint:   cfg.URL,
			HTTPClient: httpClient,
		}
		return newMCPClient().Connect(ctx, transport, nil)
	}
	return newSessionAdapter(server, domain.TransportSSE, cfg.Timeout(), logger, dial)
}

func buildHeaderTransport(cfg domain.ServerConfig) http.RoundTripper {
	headers := http.Header{}
	for key, value := range cfg.Headers {
		name := http.CanonicalHeaderKey(strings.TrimSpace(key))
		if name == "" {
			continue
		}
		headers.Set(name, value)
	}
	if cfg.APIKey != "" {
		headers.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	return &headerRoundTripper{
		base:    http.DefaultTransport,
		headers: headers,
	}
}

type headerRoundTripper struct {
	base    http.RoundTripper
	headers http.Header
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, values := range h.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return h.base.RoundTrip(req)
}
