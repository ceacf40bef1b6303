// Package envelope shapes every response the bridge emits: a success or
// error branch plus metadata about cost and timing.
package envelope

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mcpbridge/internal/domain"
)

// Metadata describes the call that produced an envelope.
type Metadata struct {
	Server        string    `json:"server,omitempty"`
	RequestID     string    `json:"requestId"`
	Timestamp     string    `json:"timestamp"`
	ElapsedMS     int64     `json:"elapsedMs"`
	TokenEstimate int       `json:"tokenEstimate"`
	SizeClass     SizeClass `json:"sizeClass"`
	Truncated     bool      `json:"truncated"`
}

// Envelope is the uniform response shape written to standard output.
type Envelope struct {
	Success  bool                 `json:"success"`
	Data     any                  `json:"data,omitempty"`
	Error    *domain.ErrorPayload `json:"error,omitempty"`
	Metadata Metadata             `json:"metadata"`
}

// Builder stamps envelopes for one call. Create it before the operation so
// elapsed time covers the whole thing.
type Builder struct {
	server  string
	started time.Time
}

func NewBuilder(server string) *Builder {
	return &Builder{
		server:  server,
		started: time.Now(),
	}
}

// Success wraps a payload. The token estimate is computed from the
// serialized payload size.
func (b *Builder) Success(data any) Envelope {
	env := Envelope{
		Success:  true,
		Data:     data,
		Metadata: b.metadata(),
	}
	if encoded, err := json.Marshal(data); err == nil {
		env.Metadata.TokenEstimate = EstimateTokens(len(encoded))
	}
	env.Metadata.SizeClass = ClassifySize(env.Metadata.TokenEstimate)
	return env
}

// Failure wraps an error into the error branch.
func (b *Builder) Failure(err error) Envelope {
	env := Envelope{
		Success:  false,
		Error:    domain.Payload(err),
		Metadata: b.metadata(),
	}
	env.Metadata.SizeClass = SizeSmall
	return env
}

// MarkTruncated records that the payload was cut down before wrapping.
func (e *Envelope) MarkTruncated() {
	e.Metadata.Truncated = true
}

func (b *Builder) metadata() Metadata {
	return Metadata{
		Server:    b.server,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ElapsedMS: time.Since(b.started).Milliseconds(),
	}
}
