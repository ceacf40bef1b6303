package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/telemetry"
)

// httpAdapter talks to capability servers that expose a plain REST surface
// instead of a streaming session. Every call is a fresh request; "connected"
// only means the /info probe succeeded at least once.
type httpAdapter struct {
	server string
	base   string
	method string
	client *http.Client
	logger *zap.Logger

	mu        sync.Mutex
	connected bool
	info      domain.ServerInfo
	timeout   time.Duration
}

func newHTTPAdapter(server string, cfg domain.ServerConfig, logger *zap.Logger) Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}
	return &httpAdapter{
		server: server,
		base:   strings.TrimRight(cfg.URL, "/"),
		method: method,
		client: &http.Client{
			Transport: buildHeaderTransport(cfg),
		},
		logger:  logger,
		timeout: cfg.Timeout(),
	}
}

type httpInfoPayload struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocolVersion"`
	Instructions    string `json:"instructions"`
}

type httpToolsPayload struct {
	Tools []domain.Tool `json:"tools"`
}

type httpExecutePayload struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type httpResourcesPayload struct {
	Resources []domain.Resource `json:"resources"`
}

type httpReadPayload struct {
	URI string `json:"uri"`
}

type httpContentsPayload struct {
	Contents []domain.ResourceContents `json:"contents"`
}

type httpPromptsPayload struct {
	Prompts []domain.Prompt `json:"prompts"`
}

type httpGetPromptPayload struct {
	Prompt    string            `json:"prompt"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

func (a *httpAdapter) Connect(ctx context.Context) error {
	a.logger.Debug("connect attempt",
		telemetry.EventField(telemetry.EventConnectAttempt),
		telemetry.ServerField(a.server),
		telemetry.TransportField(string(domain.TransportHTTP)),
	)

	info, err := guarded(ctx, a.Timeout(), a.server, "connect", func(ctx context.Context) (domain.ServerInfo, error) {
		var payload httpInfoPayload
		if err := a.do(ctx, a.method, "/info", nil, &payload); err != nil {
			return domain.ServerInfo{}, err
		}
		return domain.ServerInfo{
			Name:            payload.Name,
			Version:         payload.Version,
			ProtocolVersion: payload.ProtocolVersion,
			Instructions:    payload.Instructions,
		}, nil
	})
	if err != nil {
		a.logger.Warn("connect failed",
			telemetry.EventField(telemetry.EventConnectFailure),
			telemetry.ServerField(a.server),
			zap.Error(err),
		)
		if domain.CodeFrom(err) == domain.CodeServerTimeout {
			return err
		}
		return connectFailedErr(a.server, err)
	}

	a.mu.Lock()
	a.connected = true
	a.info = info
	a.mu.Unlock()

	a.logger.Debug("connected",
		telemetry.EventField(telemetry.EventConnectSuccess),
		telemetry.ServerField(a.server),
	)
	return nil
}

func (a *httpAdapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}

func (a *httpAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

func (a *httpAdapter) requireConnected() error {
	if !a.IsConnected() {
		return notConnectedErr(a.server)
	}
	return nil
}

func (a *httpAdapter) ServerInfo(ctx context.Context) (domain.ServerInfo, error) {
	if err := a.requireConnected(); err != nil {
		return domain.ServerInfo{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, nil
}

func (a *httpAdapter) ListTools(ctx context.Context) ([]domain.Tool, error) {
	if err := a.requireConnected(); err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "tools/list", func(ctx context.Context) ([]domain.Tool, error) {
		var payload httpToolsPayload
		if err := a.do(ctx, a.method, "/tools", nil, &payload); err != nil {
			return nil, err
		}
		return payload.Tools, nil
	})
}

func (a *httpAdapter) Tool(ctx context.Context, name string) (domain.Tool, bool, error) {
	tools, err := a.ListTools(ctx)
	if err != nil {
		return domain.Tool{}, false, err
	}
	for _, tool := range tools {
		if tool.Name == name {
			return tool, true, nil
		}
	}
	return domain.Tool{}, false, nil
}

func (a *httpAdapter) CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error) {
	if err := a.requireConnected(); err != nil {
		return domain.ToolResult{}, err
	}
	result, err := guarded(ctx, a.Timeout(), a.server, "tools/call", func(ctx context.Context) (domain.ToolResult, error) {
		var payload domain.ToolResult
		body := httpExecutePayload{Tool: name, Arguments: args}
		if err := a.do(ctx, http.MethodPost, "/tools/execute", body, &payload); err != nil {
			return domain.ToolResult{}, err
		}
		return payload, nil
	})
	if err != nil {
		if domain.CodeFrom(err) == domain.CodeServerTimeout {
			return domain.ToolResult{}, err
		}
		return domain.ToolResult{}, executionFailedErr(a.server, name, err)
	}
	return result, nil
}

func (a *httpAdapter) ListResources(ctx context.Context) ([]domain.Resource, error) {
	if err := a.requireConnected(); err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "resources/list", func(ctx context.Context) ([]domain.Resource, error) {
		var payload httpResourcesPayload
		if err := a.do(ctx, a.method, "/resources", nil, &payload); err != nil {
			return nil, err
		}
		return payload.Resources, nil
	})
}

func (a *httpAdapter) ReadResource(ctx context.Context, uri string) ([]domain.ResourceContents, error) {
	if err := a.requireConnected(); err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "resources/read", func(ctx context.Context) ([]domain.ResourceContents, error) {
		var payload httpContentsPayload
		if err := a.do(ctx, http.MethodPost, "/resources/read", httpReadPayload{URI: uri}, &payload); err != nil {
			return nil, domain.E(domain.CodeResourceNotFound, fmt.Sprintf("failed to read resource %q", uri), err).
				WithDetail("server", a.server).
				WithDetail("uri", uri)
		}
		return payload.Contents, nil
	})
}

func (a *httpAdapter) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	if err := a.requireConnected(); err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "prompts/list", func(ctx context.Context) ([]domain.Prompt, error) {
		var payload httpPromptsPayload
		if err := a.do(ctx, a.method, "/prompts", nil, &payload); err != nil {
			return nil, err
		}
		return payload.Prompts, nil
	})
}

func (a *httpAdapter) GetPrompt(ctx context.Context, name string, args map[string]string) (domain.PromptResult, error) {
	if err := a.requireConnected(); err != nil {
		return domain.PromptResult{}, err
	}
	return guarded(ctx, a.Timeout(), a.server, "prompts/get", func(ctx context.Context) (domain.PromptResult, error) {
		var payload domain.PromptResult
		body := httpGetPromptPayload{Prompt: name, Arguments: args}
		if err := a.do(ctx, http.MethodPost, "/prompts/get", body, &payload); err != nil {
			return domain.PromptResult{}, domain.E(domain.CodePromptNotFound, fmt.Sprintf("failed to get prompt %q", name), err).
				WithDetail("server", a.server).
				WithDetail("prompt", name)
		}
		return payload, nil
	})
}

func (a *httpAdapter) SetTimeout(d time.Duration) {
	a.mu.Lock()
	a.timeout = d
	a.mu.Unlock()
}

func (a *httpAdapter) Timeout() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeout
}

func (a *httpAdapter) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
