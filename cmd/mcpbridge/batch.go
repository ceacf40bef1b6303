package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/batch"
	"mcpbridge/internal/infra/envelope"
)

func newBatchCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run batches of tool calls",
	}
	cmd.AddCommand(newBatchRunCmd(opts))
	return cmd
}

func newBatchRunCmd(opts *cliOptions) *cobra.Command {
	var (
		file          string
		rawOps        string
		transactional bool
	)

	cmd := &cobra.Command{
		Use:   "run [server]",
		Short: "Run a batch of tool calls against one server",
		Long: "Runs an ordered list of tool invocations over a single pooled connection.\n" +
			"Operations are read from --ops or --file as a JSON array of\n" +
			"{\"tool\": ..., \"arguments\": {...}, \"outputVar\": ...} objects; a positional\n" +
			"server name fills in any operation that does not name its own.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := ""
			if len(args) == 1 {
				server = args[0]
			}
			b := envelope.NewBuilder(server)

			ops, err := loadOperations(file, rawOps, server)
			if err != nil {
				return fail(b, err)
			}

			bridge, err := newBridge(cmd.Context(), opts)
			if err != nil {
				return fail(b, err)
			}
			defer bridge.close(cmd.Context())

			mode := batch.ModeBestEffort
			if transactional {
				mode = batch.ModeTransactional
			}
			report, err := bridge.executor.Run(cmd.Context(), ops, mode)
			if err != nil {
				return fail(b, err)
			}
			return emit(b, report)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file with the operation list")
	cmd.Flags().StringVar(&rawOps, "ops", "", "operation list as inline JSON")
	cmd.Flags().BoolVar(&transactional, "transactional", false, "abort the batch on the first failure")
	return cmd
}

func loadOperations(file, rawOps, server string) ([]domain.BatchOperation, error) {
	if file == "" && rawOps == "" {
		return nil, domain.Ef(domain.CodeValidation, "no operations given").
			WithSuggestion("pass --ops with inline JSON or --file with a path")
	}
	if file != "" && rawOps != "" {
		return nil, domain.Ef(domain.CodeValidation, "--ops and --file are mutually exclusive")
	}

	raw := []byte(rawOps)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, domain.E(domain.CodeValidation, fmt.Sprintf("read operations file: %v", err), err)
		}
		raw = data
	}

	var ops []domain.BatchOperation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, domain.E(domain.CodeInvalidJSON,
			fmt.Sprintf("operations are not a JSON array: %v", err), err).
			WithSuggestion(`expected [{"tool": "name", "arguments": {...}}, ...]`)
	}
	for i := range ops {
		if ops[i].Server == "" {
			ops[i].Server = server
		}
	}
	return ops, nil
}
