// Package pool manages one lazily established connection per configured
// capability server and hands out live adapters to callers.
package pool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/telemetry"
	"mcpbridge/internal/infra/transport"
)

// Factory builds a transport adapter for a configured server. It exists so
// tests can substitute fakes for real subprocess and network dials.
type Factory func(server string, cfg domain.ServerConfig) (transport.Adapter, error)

// Pool hands out at most one adapter per server name. Connections are opened
// on first use, never at registration time.
type Pool struct {
	logger  *zap.Logger
	factory Factory

	mu       sync.Mutex
	configs  map[string]domain.ServerConfig
	adapters map[string]transport.Adapter
}

// Options configures a Pool. A nil Factory falls back to the real transport
// constructors.
type Options struct {
	Logger  *zap.Logger
	Factory Factory
}

func New(configs map[string]domain.ServerConfig, opts Options) *Pool {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := opts.Factory
	if factory == nil {
		factory = func(server string, cfg domain.ServerConfig) (transport.Adapter, error) {
			return transport.New(server, cfg, transport.Options{Logger: logger})
		}
	}

	copied := make(map[string]domain.ServerConfig, len(configs))
	for name, cfg := range configs {
		copied[name] = cfg
	}
	return &Pool{
		logger:   logger.Named("pool"),
		factory:  factory,
		configs:  copied,
		adapters: make(map[string]transport.Adapter),
	}
}

// AddServer registers or replaces a server configuration. An existing live
// connection for the name keeps running until it is disconnected or replaced
// by the next Client call.
func (p *Pool) AddServer(name string, cfg domain.ServerConfig) {
	p.mu.Lock()
	p.configs[name] = cfg
	p.mu.Unlock()
}

// RemoveServer drops the configuration and tears down any live connection.
func (p *Pool) RemoveServer(ctx context.Context, name string) {
	p.mu.Lock()
	adapter := p.adapters[name]
	delete(p.adapters, name)
	delete(p.configs, name)
	p.mu.Unlock()

	if adapter != nil {
		p.disconnect(ctx, name, adapter)
	}
}

// Client returns a connected adapter for the named server, dialing it if
// this is the first use. Repeated calls reuse the same connection as long as
// it stays up.
func (p *Pool) Client(ctx context.Context, name string) (transport.Adapter, error) {
	p.mu.Lock()
	cfg, known := p.configs[name]
	adapter := p.adapters[name]
	p.mu.Unlock()

	if !known {
		return nil, p.notFoundErr(name)
	}
	if !cfg.Enabled {
		return nil, domain.E(domain.CodeServerDisabled,
			fmt.Sprintf("server %q is disabled", name), nil).
			WithDetail("server", name).
			WithSuggestion("enable the server in the configuration file to use it")
	}

	if adapter != nil && adapter.IsConnected() {
		return adapter, nil
	}

	if adapter == nil {
		built, err := p.factory(name, cfg)
		if err != nil {
			return nil, err
		}
		adapter = built
	}
	if err := adapter.Connect(ctx); err != nil {
		p.mu.Lock()
		delete(p.adapters, name)
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	p.adapters[name] = adapter
	p.mu.Unlock()
	return adapter, nil
}

// Disconnect closes the named server's connection if one is live. It never
// fails; close errors are logged and the adapter is dropped regardless.
func (p *Pool) Disconnect(ctx context.Context, name string) {
	p.mu.Lock()
	adapter := p.adapters[name]
	delete(p.adapters, name)
	p.mu.Unlock()

	if adapter != nil {
		p.disconnect(ctx, name, adapter)
	}
}

// DisconnectAll tears down every live connection. Intended for process
// shutdown, typically via defer.
func (p *Pool) DisconnectAll(ctx context.Context) {
	p.mu.Lock()
	adapters := make(map[string]transport.Adapter, len(p.adapters))
	for name, adapter := range p.adapters {
		adapters[name] = adapter
	}
	p.adapters = make(map[string]transport.Adapter)
	p.mu.Unlock()

	for name, adapter := range adapters {
		p.disconnect(ctx, name, adapter)
	}
}

func (p *Pool) disconnect(ctx context.Context, name string, adapter transport.Adapter) {
	if err := adapter.Disconnect(ctx); err != nil {
		p.logger.Warn("disconnect failed",
			telemetry.EventField(telemetry.EventDisconnectFailure),
			telemetry.ServerField(name),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("disconnected",
		telemetry.EventField(telemetry.EventDisconnect),
		telemetry.ServerField(name),
	)
}

// ConfiguredServers returns all registered server names, sorted.
func (p *Pool) ConfiguredServers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.configs))
	for name := range p.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConnectedServers returns the names with a live connection, sorted.
func (p *Pool) ConnectedServers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.adapters))
	for name, adapter := range p.adapters {
		if adapter.IsConnected() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Config returns the stored configuration for a server.
func (p *Pool) Config(name string) (domain.ServerConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, ok := p.configs[name]
	return cfg, ok
}

func (p *Pool) notFoundErr(name string) error {
	known := p.ConfiguredServers()
	err := domain.E(domain.CodeServerNotFound,
		fmt.Sprintf("server %q is not configured", name), nil).
		WithDetail("requested", name).
		WithDetail("configured", known).
		WithSuggestion("run \"mcpbridge servers list\" to see configured servers")
	if similar := domain.SimilarNames(name, known); len(similar) > 0 {
		err = err.WithSimilar(similar)
	}
	return err
}
