package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/envelope"
)

func newToolsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and invoke tools on a server",
	}
	cmd.AddCommand(
		newToolsListCmd(opts),
		newToolsDescribeCmd(opts),
		newToolsCallCmd(opts),
	)
	return cmd
}

func newToolsListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <server>",
		Short: "List tool names on a server",
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
			tools, err := client.ListTools(cmd.Context())
			if err != nil {
				return fail(b, err)
			}

			// names only; schemas come from "tools describe"
			names := make([]string, 0, len(tools))
			for _, tool := range tools {
				names = append(names, tool.Name)
			}
			return emit(b, map[string]any{"tools": names})
		},
	}
}

func newToolsDescribeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <server> <tool>",
		Short: "Show a tool's description and input schema",
		Args:  cobra.ExactArgs(2),
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
			tool, found, err := client.Tool(cmd.Context(), args[1])
			if err != nil {
				return fail(b, err)
			}
			if !found {
				return fail(b, toolNotFoundErr(cmd.Context(), client, args[0], args[1]))
			}
			return emit(b, tool)
		},
	}
}

func newToolsCallCmd(opts *cliOptions) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <server> <tool>",
		Short: "Invoke a tool with JSON arguments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder(args[0])

			toolArgs, err := parseJSONArgs(rawArgs)
			if err != nil {
				return fail(b, err)
			}

			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			client, err := bridge.client(cmd.Context(), opts, args[0])
			if err != nil {
				return fail(b, err)
			}
			_, found, err := client.Tool(cmd.Context(), args[1])
			if err != nil {
				return fail(b, err)
			}
			if !found {
				return fail(b, toolNotFoundErr(cmd.Context(), client, args[0], args[1]))
			}

			result, err := client.CallTool(cmd.Context(), args[1], toolArgs)
			if err != nil {
				return fail(b, err)
			}
			result, truncated := truncateToolResult(result, opts.maxTokens)
			return emitTruncated(b, result, truncated)
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "", "tool arguments as a JSON object")
	return cmd
}

func parseJSONArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, domain.E(domain.CodeInvalidJSON,
			fmt.Sprintf("arguments are not a JSON object: %v", err), err).
			WithSuggestion(`pass --args '{"key": "value"}'`)
	}
	return out, nil
}

// toolNotFoundErr builds the typo-recovery error for an unknown tool,
// listing the server's actual tool names as candidates.
func toolNotFoundErr(ctx context.Context, client poolClient, server, tool string) error {
	err := domain.Ef(domain.CodeToolNotFound, "tool %q not found on server %q", tool, server).
		WithDetail("server", server).
		WithSuggestion(fmt.Sprintf("run \"mcpbridge tools list %s\" to see available tools", server))
	tools, listErr := client.ListTools(ctx)
	if listErr != nil {
		return err
	}
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	err = err.WithDetail("available", names)
	if similar := domain.SimilarNames(tool, names); len(similar) > 0 {
		err = err.WithSimilar(similar)
	}
	return err
}
