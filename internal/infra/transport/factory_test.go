package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
)

func TestNew_BuildsAdapterPerTransport(t *testing.T) {
	cases := map[string]domain.ServerConfig{
		"stdio": {Transport: domain.TransportStdio, Command: "npx"},
		"sse":   {Transport: domain.TransportSSE, URL: "https://example.com/sse"},
		"http":  {Transport: domain.TransportHTTP, URL: "https://example.com/api"},
	}
	for name, cfg := range cases {
		adapter, err := New(name, cfg, Options{})
		require.NoError(t, err, name)
		require.NotNil(t, adapter, name)
		require.False(t, adapter.IsConnected(), name)
	}
}

func TestNew_RejectsUnknownTransport(t *testing.T) {
	_, err := New("ws", domain.ServerConfig{Transport: "websocket"}, Options{})
	require.Error(t, err)
	require.Equal(t, domain.CodeTransportUnsupported, domain.CodeFrom(err))
}

func TestNew_AdapterCarriesConfiguredTimeout(t *testing.T) {
	adapter, err := New("fs", domain.ServerConfig{
		Transport: domain.TransportStdio,
		Command:   "npx",
		TimeoutMS: 1500,
	}, Options{})
	require.NoError(t, err)
	require.Equal(t, domain.ServerConfig{TimeoutMS: 1500}.Timeout(), adapter.Timeout())
}
