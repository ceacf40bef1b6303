package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTransport(t *testing.T) {
	require.Equal(t, TransportStdio, NormalizeTransport(""))
	require.Equal(t, TransportStdio, NormalizeTransport("STDIO"))
	require.Equal(t, TransportSSE, NormalizeTransport(" sse "))
	require.Equal(t, TransportHTTP, NormalizeTransport("https"))
	require.Equal(t, TransportKind("carrier-pigeon"), NormalizeTransport("carrier-pigeon"))
}

func TestServerConfigValidate_Stdio(t *testing.T) {
	cfg := ServerConfig{Transport: TransportStdio, Command: "npx", Enabled: true}
	require.NoError(t, cfg.Validate("fs"))

	cfg.Command = "  "
	err := cfg.Validate("fs")
	require.Error(t, err)
	require.Equal(t, CodeValidation, CodeFrom(err))
}

func TestServerConfigValidate_RemoteURL(t *testing.T) {
	cfg := ServerConfig{Transport: TransportSSE, URL: "https://example.com/sse"}
	require.NoError(t, cfg.Validate("web"))

	for _, bad := range []string{"", "not-a-url", "/relative/path"} {
		cfg.URL = bad
		err := cfg.Validate("web")
		require.Error(t, err, "url %q", bad)
		require.Equal(t, CodeValidation, CodeFrom(err))
	}
}

func TestServerConfigValidate_HTTPMethod(t *testing.T) {
	cfg := ServerConfig{Transport: TransportHTTP, URL: "https://example.com/api", Method: "post"}
	require.NoError(t, cfg.Validate("api"))

	cfg.Method = "DELETE"
	err := cfg.Validate("api")
	require.Error(t, err)
	require.Equal(t, CodeValidation, CodeFrom(err))
}

func TestServerConfigValidate_UnknownTransport(t *testing.T) {
	cfg := ServerConfig{Transport: "websocket"}
	err := cfg.Validate("ws")
	require.Error(t, err)
	require.Equal(t, CodeTransportUnsupported, CodeFrom(err))
}

func TestServerConfigTimeout(t *testing.T) {
	require.Equal(t, DefaultTimeout, ServerConfig{}.Timeout())
	require.Equal(t, 2500*time.Millisecond, ServerConfig{TimeoutMS: 2500}.Timeout())
}
