package main

import (
	"github.com/spf13/cobra"

	"mcpbridge/internal/infra/envelope"
)

func newResourcesCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Inspect and read resources on a server",
	}
	cmd.AddCommand(
		newResourcesListCmd(opts),
		newResourcesReadCmd(opts),
	)
	return cmd
}

func newResourcesListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <server>",
		Short: "List resources on a server",
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
			resources, err := client.ListResources(cmd.Context())
			if err != nil {
				return fail(b, err)
			}
			return emit(b, map[string]any{"resources": resources})
		},
	}
}

func newResourcesReadCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <server> <uri>",
		Short: "Read a resource by URI",
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
			contents, err := client.ReadResource(cmd.Context(), args[1])
			if err != nil {
				return fail(b, err)
			}

			truncated := false
			if opts.maxTokens > 0 {
				for i, chunk := range contents {
					text, cut := envelope.TruncateText(chunk.Text, opts.maxTokens)
					contents[i].Text = text
					truncated = truncated || cut
				}
			}
			return emitTruncated(b, map[string]any{"contents": contents}, truncated)
		},
	}
}
