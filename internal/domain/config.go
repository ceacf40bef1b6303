package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TransportKind discriminates the wire mechanism used to reach a server.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportSSE   TransportKind = "sse"
	TransportHTTP  TransportKind = "http"
)

// NormalizeTransport maps a raw config string onto a known kind; an
// unrecognized value comes back unchanged so validation can name it.
func NormalizeTransport(raw string) TransportKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(TransportStdio):
		return TransportStdio
	case string(TransportSSE):
		return TransportSSE
	case string(TransportHTTP), "https":
		return TransportHTTP
	default:
		return TransportKind(raw)
	}
}

// ServerConfig describes how to reach one capability server. Exactly one
// transport kind applies; the kind decides which fields are meaningful.
type ServerConfig struct {
	Transport TransportKind `json:"transport"`

	// stdio
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`

	// sse and http
	URL     string            `json:"url,omitempty"`
	APIKey  string            `json:"apiKey,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// http only
	Method string `json:"method,omitempty"`

	Enabled    bool `json:"enabled"`
	TimeoutMS  int  `json:"timeout,omitempty"`
	MaxRetries int  `json:"maxRetries,omitempty"`
}

const (
	DefaultTimeoutMS = 30000
	DefaultTimeout   = DefaultTimeoutMS * time.Millisecond
)

// Timeout returns the configured per-operation deadline, falling back to the
// 30s default when unset.
func (c ServerConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Validate checks the per-kind required fields. The name is only used to
// scope error messages.
func (c ServerConfig) Validate(name string) error {
	switch c.Transport {
	case TransportStdio:
		if strings.TrimSpace(c.Command) == "" {
			return Ef(CodeValidation, "server %q: stdio transport requires a command", name)
		}
	case TransportSSE, TransportHTTP:
		if err := validateURL(name, c.URL); err != nil {
			return err
		}
		if c.Transport == TransportHTTP && c.Method != "" {
			switch strings.ToUpper(c.Method) {
			case "GET", "POST":
			default:
				return Ef(CodeValidation, "server %q: http method must be GET or POST, got %q", name, c.Method)
			}
		}
	default:
		return Ef(CodeTransportUnsupported, "server %q: unknown transport %q", name, c.Transport).
			WithSuggestion(`supported transports are "stdio", "sse" and "http"`)
	}
	if c.TimeoutMS < 0 {
		return Ef(CodeValidation, "server %q: timeout must be positive, got %d", name, c.TimeoutMS)
	}
	if c.MaxRetries < 0 {
		return Ef(CodeValidation, "server %q: maxRetries must be non-negative, got %d", name, c.MaxRetries)
	}
	return nil
}

func validateURL(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return Ef(CodeValidation, "server %q: %s transport requires a url", name, "remote")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return E(CodeValidation, fmt.Sprintf("server %q: invalid url %q", name, raw), err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return Ef(CodeValidation, "server %q: url %q must be absolute", name, raw)
	}
	return nil
}

// Preferences carries global defaults from the config document. The
// schema-cache fields are decoded and surfaced but advisory only; nothing in
// the connection core acts on them.
type Preferences struct {
	DefaultTimeoutMS int  `json:"defaultTimeout"`
	MaxRetries       int  `json:"maxRetries"`
	CacheSchemas     bool `json:"cacheSchemas"`
	CacheTTLSeconds  int  `json:"cacheTTL"`
}

// Catalog is the decoded config document: server name to connection
// descriptor, plus global preferences.
type Catalog struct {
	Servers     map[string]ServerConfig
	Preferences Preferences
}
