package domain

// Match is one scored discovery hit. Confidence is normalized to [0,1].
type Match struct {
	Server      string  `json:"server"`
	Tool        string  `json:"tool"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// CapabilitySummary counts the capabilities one server exposes. Resource and
// prompt counts are optional; a server that errors on those listings simply
// omits them.
type CapabilitySummary struct {
	Tools     int  `json:"tools"`
	Resources *int `json:"resources,omitempty"`
	Prompts   *int `json:"prompts,omitempty"`
}

// SuggestedOperation is a batch slot proposed by discovery; arguments are
// left for the caller to fill in.
type SuggestedOperation struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// BatchSuggestion groups high-confidence matches that share a server.
type BatchSuggestion struct {
	Server     string               `json:"server"`
	Operations []SuggestedOperation `json:"operations"`
}

// DiscoveryReport is the aggregate discovery payload. Capabilities is set
// for query-less discovery; Matches and SuggestedBatch for scored discovery.
type DiscoveryReport struct {
	Capabilities   map[string]CapabilitySummary `json:"capabilities,omitempty"`
	Matches        []Match                      `json:"matches,omitempty"`
	SuggestedBatch *BatchSuggestion             `json:"suggested_batch"`
}
