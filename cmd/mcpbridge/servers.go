package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/catalog"
	"mcpbridge/internal/infra/envelope"
)

func newServersCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "Manage configured capability servers",
	}
	cmd.AddCommand(
		newServersListCmd(opts),
		newServersInfoCmd(opts),
		newServersAddCmd(opts),
		newServersRemoveCmd(opts),
	)
	return cmd
}

func newServersInfoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Connect to a server and show its identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder(args[0])
			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			client, err := bridge.client(cmd.Context(), opts, args[0])
			if err != nil {
				return fail(b, err)
			}
			info, err := client.ServerInfo(cmd.Context())
			if err != nil {
				return fail(b, err)
			}
			return emit(b, info)
		},
	}
}

type serverListing struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Enabled   bool   `json:"enabled"`
	Target    string `json:"target,omitempty"`
}

func newServersListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := envelope.NewBuilder("")
			loader := catalog.NewLoader(opts.logger)
			cat, err := loader.Load(cmd.Context(), opts.configPath)
			if err != nil {
				return fail(b, err)
			}

			listings := make([]serverListing, 0, len(cat.Servers))
			for _, name := range sortedNames(cat.Servers) {
				cfg := cat.Servers[name]
				target := cfg.URL
				if cfg.Transport == domain.TransportStdio {
					target = strings.TrimSpace(cfg.Command + " " + strings.Join(cfg.Args, " "))
				}
				listings = append(listings, serverListing{
					Name:      name,
					Transport: string(cfg.Transport),
					Enabled:   cfg.Enabled,
					Target:    target,
				})
			}
			return emit(b, map[string]any{"servers": listings})
		},
	}
}

func newServersAddCmd(opts *cliOptions) *cobra.Command {
	var (
		transport transportValue
		cfg       domain.ServerConfig
		env       []string
		headers   []string
		disabled  bool
	)
	transport.kind = domain.TransportStdio

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a server to the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder(args[0])

			cfg.Transport = transport.kind
			cfg.Enabled = !disabled
			var err error
			if cfg.Env, err = parsePairs(env); err != nil {
				return fail(b, err)
			}
			if cfg.Headers, err = parsePairs(headers); err != nil {
				return fail(b, err)
			}

			store := catalog.NewStore(catalog.NewLoader(opts.logger), opts.configPath)
			if err := store.AddServer(cmd.Context(), args[0], cfg); err != nil {
				return fail(b, err)
			}
			return emit(b, map[string]any{"added": args[0]})
		},
	}

	cmd.Flags().Var(&transport, "transport", "transport kind: stdio, sse or http")
	cmd.Flags().StringVar(&cfg.Command, "command", "", "executable for stdio servers")
	cmd.Flags().StringArrayVar(&cfg.Args, "arg", nil, "argument for the stdio command (repeatable)")
	cmd.Flags().StringArrayVar(&env, "env", nil, "KEY=VALUE environment override for the stdio command (repeatable)")
	cmd.Flags().StringVar(&cfg.Cwd, "cwd", "", "working directory for the stdio command")
	cmd.Flags().StringVar(&cfg.URL, "url", "", "endpoint for sse/http servers")
	cmd.Flags().StringVar(&cfg.APIKey, "api-key", "", "bearer token for sse/http servers")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "KEY=VALUE request header for sse/http servers (repeatable)")
	cmd.Flags().StringVar(&cfg.Method, "method", "", "request method for http servers (GET or POST)")
	cmd.Flags().IntVar(&cfg.TimeoutMS, "server-timeout", 0, "per-operation timeout for this server in milliseconds")
	cmd.Flags().IntVar(&cfg.MaxRetries, "max-retries", 0, "advisory retry budget stored with the server")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the server in disabled state")

	return cmd
}

func newServersRemoveCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a server from the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder(args[0])
			store := catalog.NewStore(catalog.NewLoader(opts.logger), opts.configPath)
			if err := store.RemoveServer(cmd.Context(), args[0]); err != nil {
				return fail(b, err)
			}
			return emit(b, map[string]any{"removed": args[0]})
		},
	}
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, domain.Ef(domain.CodeValidation, "expected KEY=VALUE, got %q", pair)
		}
		out[key] = value
	}
	return out, nil
}

func sortedNames(servers map[string]domain.ServerConfig) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
