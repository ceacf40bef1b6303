package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/batch"
	"mcpbridge/internal/infra/catalog"
	"mcpbridge/internal/infra/discovery"
	"mcpbridge/internal/infra/pool"
	"mcpbridge/internal/infra/telemetry"
)

type cliOptions struct {
	configPath string
	verbose    bool
	timeoutMS  int
	maxTokens  int
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		configPath: "mcpbridge.json",
		logger:     zap.NewNop(),
	}

	root := &cobra.Command{
		Use:           "mcpbridge",
		Short:         "CLI bridge to MCP capability servers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.logger = telemetry.NewCLILogger(opts.verbose)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the server config file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "log debug detail to stderr")
	root.PersistentFlags().IntVar(&opts.timeoutMS, "timeout", 0, "override the per-operation timeout in milliseconds")
	root.PersistentFlags().IntVar(&opts.maxTokens, "max-tokens", 0, "truncate text payloads above this estimated token count")

	root.AddCommand(
		newServersCmd(&opts),
		newToolsCmd(&opts),
		newResourcesCmd(&opts),
		newPromptsCmd(&opts),
		newBatchCmd(&opts),
		newSearchCmd(&opts),
		newRecommendCmd(&opts),
		newDiscoverCmd(&opts),
	)

	return root
}

// bridge bundles the collaborators a command needs once the config is
// loaded. Every bridge must be closed so pooled connections tear down.
type bridge struct {
	catalog  domain.Catalog
	pool     *pool.Pool
	executor *batch.Executor
	engine   *discovery.Engine
}

func newBridge(ctx context.Context, opts *cliOptions) (*bridge, error) {
	loader := catalog.NewLoader(opts.logger)
	cat, err := loader.Load(ctx, opts.configPath)
	if err != nil {
		return nil, err
	}

	p := pool.New(cat.Servers, pool.Options{Logger: opts.logger})
	return &bridge{
		catalog:  cat,
		pool:     p,
		executor: batch.NewExecutor(p, opts.logger),
		engine:   discovery.NewEngine(p, opts.logger),
	}, nil
}

func (b *bridge) close(ctx context.Context) {
	b.pool.DisconnectAll(ctx)
}

// client resolves a pooled adapter and applies any timeout override from
// the command line.
func (b *bridge) client(ctx context.Context, opts *cliOptions, server string) (poolClient, error) {
	adapter, err := b.pool.Client(ctx, server)
	if err != nil {
		return nil, err
	}
	if opts.timeoutMS > 0 {
		adapter.SetTimeout(domain.ServerConfig{TimeoutMS: opts.timeoutMS}.Timeout())
	}
	return adapter, nil
}

type poolClient interface {
	ServerInfo(ctx context.Context) (domain.ServerInfo, error)
	ListTools(ctx context.Context) ([]domain.Tool, error)
	Tool(ctx context.Context, name string) (domain.Tool, bool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
	ReadResource(ctx context.Context, uri string) ([]domain.ResourceContents, error)
	ListPrompts(ctx context.Context) ([]domain.Prompt, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (domain.PromptResult, error)
}

// transportValue is a pflag.Value constraining --transport to known kinds.
type transportValue struct {
	kind domain.TransportKind
}

var _ pflag.Value = (*transportValue)(nil)

func (t *transportValue) String() string {
	return string(t.kind)
}

func (t *transportValue) Set(raw string) error {
	kind := domain.NormalizeTransport(raw)
	switch kind {
	case domain.TransportStdio, domain.TransportSSE, domain.TransportHTTP:
		t.kind = kind
		return nil
	default:
		return fmt.Errorf("unknown transport %q (want stdio, sse or http)", raw)
	}
}

func (t *transportValue) Type() string {
	return "transport"
}
