package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
)

func TestGuarded_ResolvesWithinBudget(t *testing.T) {
	got, err := guarded(context.Background(), time.Second, "fs", "tools/list", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestGuarded_PropagatesOperationError(t *testing.T) {
	boom := errors.New("boom")
	_, err := guarded(context.Background(), time.Second, "fs", "tools/call", func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestGuarded_TimesOutSlowOperation(t *testing.T) {
	timeout := 50 * time.Millisecond
	_, err := guarded(context.Background(), timeout, "fs", "tools/call", func(ctx context.Context) (int, error) {
		select {
		case <-time.After(timeout + 100*time.Millisecond):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})
	require.Error(t, err)
	require.Equal(t, domain.CodeServerTimeout, domain.CodeFrom(err))
	require.Contains(t, err.Error(), timeout.String())
}

func TestGuarded_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := guarded(ctx, time.Second, "fs", "tools/list", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
}
