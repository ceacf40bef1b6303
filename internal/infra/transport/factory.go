package transport

import (
	"fmt"

	"go.uber.org/zap"

	"mcpbridge/internal/domain"
)

// Options carries the cross-cutting collaborators adapters share.
type Options struct {
	Logger *zap.Logger
}

// New builds the adapter matching the server's configured transport.
func New(server string, cfg domain.ServerConfig, opts Options) (Adapter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("transport")

	switch domain.NormalizeTransport(string(cfg.Transport)) {
	case domain.TransportStdio:
		return newStdioAdapter(server, cfg, logger), nil
	case domain.TransportSSE:
		return newSSEAdapter(server, cfg, logger), nil
	case domain.TransportHTTP:
		return newHTTPAdapter(server, cfg, logger), nil
	default:
		return nil, domain.E(domain.CodeTransportUnsupported,
			fmt.Sprintf("unsupported transport %q for server %q", cfg.Transport, server), nil).
			WithDetail("server", server).
			WithSuggestion("supported transports are stdio, sse and http")
	}
}
