package main

import (
	"github.com/spf13/cobra"

	"mcpbridge/internal/infra/envelope"
)

func newPromptsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Inspect and render prompts on a server",
	}
	cmd.AddCommand(
		newPromptsListCmd(opts),
		newPromptsGetCmd(opts),
	)
	return cmd
}

func newPromptsListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <server>",
		Short: "List prompts on a server",
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
			prompts, err := client.ListPrompts(cmd.Context())
			if err != nil {
				return fail(b, err)
			}

			names := make([]string, 0, len(prompts))
			for _, prompt := range prompts {
				names = append(names, prompt.Name)
			}
			return emit(b, map[string]any{"prompts": names})
		},
	}
}

func newPromptsGetCmd(opts *cliOptions) *cobra.Command {
	var rawArgs []string

	cmd := &cobra.Command{
		Use:   "get <server> <prompt>",
		Short: "Render a prompt with arguments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder(args[0])

			promptArgs, err := parsePairs(rawArgs)
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
			result, err := client.GetPrompt(cmd.Context(), args[1], promptArgs)
			if err != nil {
				return fail(b, err)
			}
			return emit(b, result)
		},
	}

	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "KEY=VALUE prompt argument (repeatable)")
	return cmd
}
