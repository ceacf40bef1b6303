package domain

// ServerInfo identifies a connected capability server.
type ServerInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version,omitempty"`
	ProtocolVersion string `json:"protocolVersion,omitempty"`
	Instructions    string `json:"instructions,omitempty"`
}

// Tool is an immutable snapshot of one tool definition. InputSchema holds
// whatever JSON schema the server published; the bridge passes it through
// without interpreting it.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InputSchema any    `json:"inputSchema,omitempty"`
}

// Resource is an immutable snapshot of one resource listing.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// ResourceContents is one chunk of a read resource, either text or blob.
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     []byte `json:"blob,omitempty"`
}

// Prompt is an immutable snapshot of one prompt definition.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ContentKind discriminates the result content variants.
type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentImage    ContentKind = "image"
	ContentAudio    ContentKind = "audio"
	ContentResource ContentKind = "resource"
)

// Content is one element of a tool or prompt result. Kind decides which
// fields are populated.
type Content struct {
	Kind     ContentKind       `json:"type"`
	Text     string            `json:"text,omitempty"`
	Data     []byte            `json:"data,omitempty"`
	MIMEType string            `json:"mimeType,omitempty"`
	Resource *ResourceContents `json:"resource,omitempty"`
}

// ToolResult is the ordered content a tool call produced plus its error flag.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// PromptMessage is one rendered message of a prompt result.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// PromptResult is the server's rendering of a prompt with arguments applied.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// FlattenText concatenates the text portions of a result, which is what the
// token estimator and truncation operate on.
func (r ToolResult) FlattenText() string {
	var out string
	for _, c := range r.Content {
		if c.Kind == ContentText {
			out += c.Text
		}
	}
	return out
}
