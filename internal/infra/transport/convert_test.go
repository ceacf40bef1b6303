package transport

import (
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
)

func TestMapContent_KeepsVariantKinds(t *testing.T) {
	text := mapContent(&mcp.TextContent{Text: "hello"})
	require.Equal(t, domain.ContentText, text.Kind)
	require.Equal(t, "hello", text.Text)

	image := mapContent(&mcp.ImageContent{Data: []byte{1, 2}, MIMEType: "image/png"})
	require.Equal(t, domain.ContentImage, image.Kind)
	require.Equal(t, "image/png", image.MIMEType)

	audio := mapContent(&mcp.AudioContent{Data: []byte{3, 4}, MIMEType: "audio/wav"})
	require.Equal(t, domain.ContentAudio, audio.Kind)
	require.Equal(t, "audio/wav", audio.MIMEType)
	require.Equal(t, []byte{3, 4}, audio.Data)
}

func TestMapContent_EmbeddedResource(t *testing.T) {
	embedded := mapContent(&mcp.EmbeddedResource{
		Resource: &mcp.ResourceContents{URI: "file:///a.txt", MIMEType: "text/plain", Text: "body"},
	})
	require.Equal(t, domain.ContentResource, embedded.Kind)
	require.NotNil(t, embedded.Resource)
	require.Equal(t, "file:///a.txt", embedded.Resource.URI)
	require.Equal(t, "body", embedded.Resource.Text)
}
