package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mcpbridge/internal/infra/envelope"
)

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tool names and descriptions across all enabled servers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder("")
			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			matches, err := bridge.engine.SearchAllServers(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return fail(b, err)
			}
			return emit(b, map[string]any{"matches": matches})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "cap the total number of matches")
	return cmd
}

func newRecommendCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <task description>",
		Short: "Rank tools across all enabled servers for a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder("")
			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			matches, err := bridge.engine.RecommendTools(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fail(b, err)
			}
			return emit(b, map[string]any{"recommendations": matches})
		},
	}
}

func newDiscoverCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [query]",
		Short: "Summarize capabilities across all enabled servers",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := envelope.NewBuilder("")
			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			report, err := bridge.engine.DiscoverCapabilities(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fail(b, err)
			}
			return emit(b, report)
		},
	}
}
