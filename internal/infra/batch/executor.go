// Package batch runs ordered groups of tool calls against a single server,
// either transactionally or best-effort.
package batch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mcpbridge/internal/domain"
	"mcpbridge/internal/infra/pool"
	"mcpbridge/internal/infra/telemetry"
)

// Mode selects the failure policy for a batch.
type Mode string

const (
	// ModeTransactional aborts the batch on the first failed operation.
	ModeTransactional Mode = "transactional"
	// ModeBestEffort records failures and keeps going.
	ModeBestEffort Mode = "best-effort"
)

// Executor runs batches through the shared connection pool.
type Executor struct {
	pool   *pool.Pool
	logger *zap.Logger
}

func NewExecutor(p *pool.Pool, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		pool:   p,
		logger: logger.Named("batch"),
	}
}

// Run executes the operations in order over one connection. All operations
// must target the same server; mixing servers in one batch is rejected
// before anything is dialed. In transactional mode the first failure aborts
// the batch and only the wrapped error is returned; in best-effort mode
// failures are recorded per operation and the full report comes back.
func (e *Executor) Run(ctx context.Context, ops []domain.BatchOperation, mode Mode) (domain.BatchReport, error) {
	if len(ops) == 0 {
		return domain.BatchReport{}, domain.E(domain.CodeValidation,
			"batch contains no operations", nil).
			WithSuggestion("provide at least one operation")
	}

	server := ops[0].Server
	for i, op := range ops {
		if op.Server != server {
			return domain.BatchReport{}, domain.E(domain.CodeValidation,
				fmt.Sprintf("batch mixes servers: operation %d targets %q, expected %q", i+1, op.Server, server), nil).
				WithSuggestion("split the batch so every operation targets the same server")
		}
		if op.Tool == "" {
			return domain.BatchReport{}, domain.E(domain.CodeValidation,
				fmt.Sprintf("operation %d has no tool name", i+1), nil)
		}
	}

	client, err := e.pool.Client(ctx, server)
	if err != nil {
		return domain.BatchReport{}, err
	}

	report := domain.BatchReport{
		Server:     server,
		Operations: make([]domain.BatchOutcome, 0, len(ops)),
	}

	for i, op := range ops {
		outcome, opErr := e.runOne(ctx, client, server, op)
		report.Operations = append(report.Operations, outcome)
		report.Summary.Total++
		if opErr == nil {
			report.Summary.Succeeded++
			continue
		}
		report.Summary.Failed++

		if mode == ModeTransactional {
			e.logger.Warn("batch aborted",
				telemetry.EventField(telemetry.EventBatchAbort),
				telemetry.ServerField(server),
				telemetry.ToolField(op.Tool),
			)
			return domain.BatchReport{}, domain.E(domain.CodeFrom(opErr),
				fmt.Sprintf("batch aborted: operation %d (%s) failed: %s", i+1, op.Tool, outcome.Error.Message), opErr).
				WithDetail("failedOperation", i+1).
				WithDetail("tool", op.Tool).
				WithSuggestion("fix the failing operation or rerun without --transactional")
		}
	}
	return report, nil
}

func (e *Executor) runOne(ctx context.Context, client clientAPI, server string, op domain.BatchOperation) (outcome domain.BatchOutcome, err error) {
	outcome = domain.BatchOutcome{
		Tool:      op.Tool,
		OutputVar: op.OutputVar,
	}
	start := time.Now()
	defer func() {
		outcome.ElapsedMS = time.Since(start).Milliseconds()
	}()

	_, found, err := client.Tool(ctx, op.Tool)
	if err != nil {
		outcome.Error = domain.Payload(err)
		return outcome, err
	}
	if !found {
		err := domain.E(domain.CodeToolNotFound,
			fmt.Sprintf("tool %q not found on server %q", op.Tool, server), nil).
			WithDetail("server", server).
			WithDetail("tool", op.Tool)
		outcome.Error = domain.Payload(err)
		return outcome, err
	}

	result, err := client.CallTool(ctx, op.Tool, op.Arguments)
	if err != nil {
		outcome.Error = domain.Payload(err)
		return outcome, err
	}
	if result.IsError {
		err := domain.E(domain.CodeToolExecutionFailed,
			fmt.Sprintf("tool %q reported an error: %s", op.Tool, result.FlattenText()), nil).
			WithDetail("server", server).
			WithDetail("tool", op.Tool)
		outcome.Error = domain.Payload(err)
		return outcome, err
	}
	outcome.Result = &result
	return outcome, nil
}

// clientAPI is the slice of the transport adapter the executor needs.
type clientAPI interface {
	Tool(ctx context.Context, name string) (domain.Tool, bool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (domain.ToolResult, error)
}
