package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/telemetry"
)

const (
	clientName    = "mcpbridge"
	clientVersion = "0.1.0"
)

// sessionAdapter implements Adapter on top of an MCP client session. The
// stdio and SSE variants differ only in how they dial; everything after the
// handshake is identical.
type sessionAdapter struct {
	server string
	kind   domain.TransportKind
	logger *zap.Logger
	dial   func(ctx context.Context) (*mcp.ClientSession, error)

	mu      sync.Mutex
	session *mcp.ClientSession
	timeout time.Duration
}

func newSessionAdapter(server string, kind domain.TransportKind, timeout time.Duration, logger *zap.Logger, dial func(ctx context.Context) (*mcp.ClientSession, error)) *sessionAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sessionAdapter{
		server:  server,
		kind:    kind,
		logger:  logger,
		dial:    dial,
		timeout: timeout,
	}
}

func newMCPClient() *mcp.Client {
	return mcp.NewClient(&mcp.Implementation{
		Name:    clientName,
		Version: clientVersion,
	}, nil)
}

func (a *sessionAdapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.session != nil {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	a.logger.Debug("connect attempt",
		telemetry.EventField(telemetry.EventConnectAttempt),
		telemetry.ServerField(a.server),
		telemetry.TransportField(string(a.kind)),
	)

	start := time.Now()
	session, err := guarded(ctx, a.Timeout(), a.server, "connect", a.dial)
	if err != nil {
		a.logger.Warn("connect failed",
			telemetry.EventField(telemetry.EventConnectFailure),
			telemetry.ServerField(a.server),
			zap.Error(err),
		)
		var typed *domain.Error
		if errors.As(err, &typed) && typed.Code == domain.CodeServerTimeout {
			return err
		}
		return connectFailedErr(a.server, err)
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	go a.watch(session)

	a.logger.Debug("connected",
		telemetry.EventField(telemetry.EventConnectSuccess),
		telemetry.ServerField(a.server),
		telemetry.DurationField(time.Since(start)),
	)
	return nil
}

// watch clears the cached session once the server side goes away, so the
// pool sees the adapter as disconnected instead of reusing a dead session.
func (a *sessionAdapter) watch(session *mcp.ClientSession) {
	_ = session.Wait()
	a.mu.Lock()
	if a.session == session {
		a.session = nil
	}
	a.mu.Unlock()
}

func (a *sessionAdapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	session := a.session
	a.session = nil
	a.mu.Unlock()
	if session == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- session.Close() }()
	select {
	case err := <-done:
		if err != nil {
			a.logger.Warn("disconnect failed",
				telemetry.EventField(telemetry.EventDisconnectFailure),
				telemetry.ServerField(a.server),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		a.logger.Warn("disconnect abandoned",
			telemetry.EventField(telemetry.EventDisconnectFailure),
			telemetry.ServerField(a.server),
			zap.Error(ctx.Err()),
		)
	}
	return nil
}

func (a *sessionAdapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

func (a *sessionAdapter) currentSession() (*mcp.ClientSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, notConnectedErr(a.server)
	}
	return a.session, nil
}

func (a *sessionAdapter) ServerInfo(ctx context.Context) (domain.ServerInfo, error) {
	session, err := a.currentSession()
	if err != nil {
		return domain.ServerInfo{}, err
	}
	return mapServerInfo(session.InitializeResult()), nil
}

func (a *sessionAdapter) ListTools(ctx context.Context) ([]domain.Tool, error) {
	session, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "tools/list", func(ctx context.Context) ([]domain.Tool, error) {
		result, err := session.ListTools(ctx, nil)
		if err != nil {
			return nil, err
		}
		return mapTools(result.Tools), nil
	})
}

func (a *sessionAdapter) Tool(ctx context.Context, name string) (domain.Tool, bool, error) {
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

func (a *sessionAdapter) CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error) {
	session, err := a.currentSession()
	if err != nil {
		return domain.ToolResult{}, err
	}
	result, err := guarded(ctx, a.Timeout(), a.server, "tools/call", func(ctx context.Context) (domain.ToolResult, error) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
		if err != nil {
			return domain.ToolResult{}, err
		}
		return mapToolResult(result), nil
	})
	if err != nil {
		var typed *domain.Error
		if errors.As(err, &typed) && typed.Code == domain.CodeServerTimeout {
			return domain.ToolResult{}, err
		}
		return domain.ToolResult{}, executionFailedErr(a.server, name, err)
	}
	return result, nil
}

func (a *sessionAdapter) ListResources(ctx context.Context) ([]domain.Resource, error) {
	session, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "resources/list", func(ctx context.Context) ([]domain.Resource, error) {
		result, err := session.ListResources(ctx, nil)
		if err != nil {
			return nil, err
		}
		return mapResources(result.Resources), nil
	})
}

func (a *sessionAdapter) ReadResource(ctx context.Context, uri string) ([]domain.ResourceContents, error) {
	session, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "resources/read", func(ctx context.Context) ([]domain.ResourceContents, error) {
		result, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		if err != nil {
			return nil, domain.E(domain.CodeResourceNotFound, fmt.Sprintf("failed to read resource %q", uri), err).
				WithDetail("server", a.server).
				WithDetail("uri", uri)
		}
		return mapResourceContents(result.Contents), nil
	})
}

func (a *sessionAdapter) ListPrompts(ctx context.Context) ([]domain.Prompt, error) {
	session, err := a.currentSession()
	if err != nil {
		return nil, err
	}
	return guarded(ctx, a.Timeout(), a.server, "prompts/list", func(ctx context.Context) ([]domain.Prompt, error) {
		result, err := session.ListPrompts(ctx, nil)
		if err != nil {
			return nil, err
		}
		return mapPrompts(result.Prompts), nil
	})
}

func (a *sessionAdapter) GetPrompt(ctx context.Context, name string, args map[string]string) (domain.PromptResult, error) {
	session, err := a.currentSession()
	if err != nil {
		return domain.PromptResult{}, err
	}
	return guarded(ctx, a.Timeout(), a.server, "prompts/get", func(ctx context.Context) (domain.PromptResult, error) {
		result, err := session.GetPrompt(ctx, &mcp.GetPromptParams{Name: name, Arguments: args})
		if err != nil {
			return domain.PromptResult{}, domain.E(domain.CodePromptNotFound, fmt.Sprintf("failed to get prompt %q", name), err).
				WithDetail("server", a.server).
				WithDetail("prompt", name)
		}
		return mapPromptResult(result), nil
	})
}

func (a *sessionAdapter) SetTimeout(d time.Duration) {
	a.mu.Lock()
	a.timeout = d
	a.mu.Unlock()
}

func (a *sessionAdapter) Timeout() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timeout
}
