package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mcpbridge/internal/domain"
)

// guarded races op against the adapter's configured deadline. The deadline
// is carried by a derived context so transports that honor cancellation
// abort their in-flight work; an op that ignores the context is abandoned
// once the timer fires and its eventual result discarded.
func guarded[T any](ctx context.Context, timeout time.Duration, server, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := op(opCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) && opCtx.Err() != nil {
			return zero, timeoutErr(server, name, timeout)
		}
		return out.value, out.err
	case <-opCtx.Done():
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, timeoutErr(server, name, timeout)
		}
		return zero, opCtx.Err()
	}
}

func timeoutErr(server, name string, timeout time.Duration) error {
	return domain.E(domain.CodeServerTimeout,
		fmt.Sprintf("%s on server %q timed out after %s", name, server, timeout),
		context.DeadlineExceeded).
		WithDetail("server", server).
		WithDetail("timeoutMs", timeout.Milliseconds()).
		WithSuggestion("raise the server's timeout setting or check that it is responsive")
}
