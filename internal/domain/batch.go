package domain

// BatchOperation is one tool invocation inside a batch. All operations of a
// batch must target the same server.
type BatchOperation struct {
	Server    string         `json:"server"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	OutputVar string         `json:"outputVar,omitempty"`
}

// BatchOutcome mirrors one input operation in order. Exactly one of Result
// and Error is set.
type BatchOutcome struct {
	Tool      string        `json:"tool"`
	Result    *ToolResult   `json:"result,omitempty"`
	Error     *ErrorPayload `json:"error,omitempty"`
	ElapsedMS int64         `json:"elapsedMs"`
	OutputVar string        `json:"outputVar,omitempty"`
}

// BatchSummary counts outcomes; Succeeded+Failed always equals Total.
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchReport is the best-effort batch payload: one outcome per input
// operation, in input order.
type BatchReport struct {
	Server     string         `json:"server"`
	Operations []BatchOutcome `json:"operations"`
	Summary    BatchSummary   `json:"summary"`
}
