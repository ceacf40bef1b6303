package envelope

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
)

func TestBuilderSuccess(t *testing.T) {
	b := NewBuilder("fs")
	env := b.Success(map[string]any{"tools": []string{"read", "write"}})

	require.True(t, env.Success)
	require.Nil(t, env.Error)
	require.Equal(t, "fs", env.Metadata.Server)
	require.NotEmpty(t, env.Metadata.RequestID)
	require.False(t, env.Metadata.Truncated)
	require.Equal(t, SizeSmall, env.Metadata.SizeClass)
	require.GreaterOrEqual(t, env.Metadata.ElapsedMS, int64(0))

	ts, err := time.Parse(time.RFC3339, env.Metadata.Timestamp)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestBuilderFailure(t *testing.T) {
	b := NewBuilder("fs")
	env := b.Failure(domain.Ef(domain.CodeToolNotFound, "tool %q not found", "frobnicate"))

	require.False(t, env.Success)
	require.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	require.Equal(t, domain.CodeToolNotFound, env.Error.Code)
}

func TestEnvelopeJSONShape(t *testing.T) {
	env := NewBuilder("fs").Success(map[string]string{"hello": "world"})
	encoded, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Equal(t, true, decoded["success"])
	require.Contains(t, decoded, "data")
	require.NotContains(t, decoded, "error")

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"requestId", "timestamp", "elapsedMs", "tokenEstimate", "sizeClass", "truncated"} {
		require.Contains(t, meta, key)
	}
}

func TestMarkTruncated(t *testing.T) {
	env := NewBuilder("fs").Success("payload")
	env.MarkTruncated()
	require.True(t, env.Metadata.Truncated)
}
