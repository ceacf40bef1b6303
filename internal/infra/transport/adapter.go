// Package transport connects the bridge to capability servers over stdio,
// SSE, or plain HTTP. The stdio and SSE variants speak MCP through the
// official SDK; the HTTP variant is a stateless REST adapter.
package transport

import (
	"context"
	"time"

	"mcpbridge/internal/domain"
)

// Adapter is the uniform capability set of one server connection. Every
// operation except Connect, SetTimeout and Timeout requires a prior
// successful Connect; violating that fails with a not-connected error and
// has no side effects.
type Adapter interface {
	Connect(ctx context.Context) error
	// Disconnect is best-effort teardown: it always leaves the adapter
	// reporting disconnected, even when the underlying close fails.
	Disconnect(ctx context.Context) error
	IsConnected() bool

	ServerInfo(ctx context.Context) (domain.ServerInfo, error)

	ListTools(ctx context.Context) ([]domain.Tool, error)
	// Tool returns the named tool definition, with ok=false when the server
	// does not expose it.
	Tool(ctx context.Context, name string) (domain.Tool, bool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error)

	ListResources(ctx context.Context) ([]domain.Resource, error)
	ReadResource(ctx context.Context, uri string) ([]domain.ResourceContents, error)

	ListPrompts(ctx context.Context) ([]domain.Prompt, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (domain.PromptResult, error)

	SetTimeout(d time.Duration)
	Timeout() time.Duration
}

func notConnectedErr(server string) error {
	return domain.E(domain.CodeConnectionFailed, "server \""+server+"\" is not connected", domain.ErrNotConnected).
		WithSuggestion("the connection pool connects servers on first use; do not call adapters directly")
}

func connectFailedErr(server string, cause error) error {
	return domain.E(domain.CodeConnectionFailed, "failed to connect to server \""+server+"\"", cause).
		WithDetail("server", server)
}

func executionFailedErr(server, tool string, cause error) error {
	return domain.E(domain.CodeToolExecutionFailed, "tool \""+tool+"\" failed on server \""+server+"\"", cause).
		WithDetail("server", server).
		WithDetail("tool", tool)
}
