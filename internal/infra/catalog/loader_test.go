package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mcpbridge/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mcpbridge.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	require.Equal(t, domain.CodeConfigNotFound, domain.CodeFrom(err))
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"servers": `)
	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	require.Equal(t, domain.CodeConfigParse, domain.CodeFrom(err))
}

func TestLoad_DecodesServersAndPreferences(t *testing.T) {
	path := writeConfig(t, `{
		"servers": {
			"fs": {
				"transport": "stdio",
				"command": "npx",
				"args": ["-y", "server-filesystem"],
				"timeout": 5000
			},
			"web": {
				"transport": "sse",
				"url": "https://example.com/sse",
				"enabled": false
			}
		},
		"preferences": {
			"defaultTimeout": 10000,
			"cacheSchemas": true,
			"cacheTTL": 300
		}
	}`)

	loader := NewLoader(nil)
	catalog, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 10000, catalog.Preferences.DefaultTimeoutMS)
	require.True(t, catalog.Preferences.CacheSchemas)
	require.Equal(t, 300, catalog.Preferences.CacheTTLSeconds)

	fs := catalog.Servers["fs"]
	require.Equal(t, domain.TransportStdio, fs.Transport)
	require.Equal(t, "npx", fs.Command)
	require.Equal(t, []string{"-y", "server-filesystem"}, fs.Args)
	require.True(t, fs.Enabled, "enabled defaults to true")
	require.Equal(t, 5000, fs.TimeoutMS)

	web := catalog.Servers["web"]
	require.Equal(t, domain.TransportSSE, web.Transport)
	require.False(t, web.Enabled)
	require.Equal(t, 10000, web.TimeoutMS, "unset timeout falls back to preferences")
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BRIDGE_TEST_KEY", "s3cret")
	path := writeConfig(t, `{
		"servers": {
			"web": {
				"transport": "http",
				"url": "https://example.com/api",
				"apiKey": "${BRIDGE_TEST_KEY}"
			}
		}
	}`)

	loader := NewLoader(nil)
	catalog, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "s3cret", catalog.Servers["web"].APIKey)
}

func TestLoad_MissingEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `{
		"servers": {
			"fs": {
				"transport": "stdio",
				"command": "npx",
				"env": {"TOKEN": "${BRIDGE_TEST_DEFINITELY_UNSET}"}
			}
		}
	}`)

	loader := NewLoader(nil)
	catalog, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "", catalog.Servers["fs"].Env["TOKEN"])
}

func TestLoad_RejectsInvalidServer(t *testing.T) {
	path := writeConfig(t, `{
		"servers": {
			"fs": {"transport": "stdio"}
		}
	}`)

	loader := NewLoader(nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	require.Equal(t, domain.CodeValidation, domain.CodeFrom(err))
}

func TestStore_AddThenRemoveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpbridge.json")
	loader := NewLoader(nil)
	store := NewStore(loader, path)

	cfg := domain.ServerConfig{
		Transport: domain.TransportStdio,
		Command:   "npx",
		Args:      []string{"-y", "server-filesystem"},
		Enabled:   true,
	}
	require.NoError(t, store.AddServer(context.Background(), "fs", cfg))

	catalog, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Contains(t, catalog.Servers, "fs")
	require.Equal(t, "npx", catalog.Servers["fs"].Command)

	err = store.AddServer(context.Background(), "fs", cfg)
	require.Error(t, err)
	require.Equal(t, domain.CodeServerExists, domain.CodeFrom(err))

	require.NoError(t, store.RemoveServer(context.Background(), "fs"))
	catalog, err = loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.NotContains(t, catalog.Servers, "fs")
}

func TestStore_RemoveUnknownSuggestsSimilar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpbridge.json")
	loader := NewLoader(nil)
	store := NewStore(loader, path)

	require.NoError(t, store.AddServer(context.Background(), "web_fetcher", domain.ServerConfig{
		Transport: domain.TransportSSE,
		URL:       "https://example.com/sse",
		Enabled:   true,
	}))

	err := store.RemoveServer(context.Background(), "fetch")
	require.Error(t, err)

	var typed *domain.Error
	require.ErrorAs(t, err, &typed)
	require.Equal(t, domain.CodeServerNotFound, typed.Code)
	require.Equal(t, []string{"web_fetcher"}, typed.Similar)
}

func TestStore_ValidatesBeforeWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpbridge.json")
	store := NewStore(NewLoader(nil), path)

	err := store.AddServer(context.Background(), "bad", domain.ServerConfig{Transport: domain.TransportStdio})
	require.Error(t, err)
	require.Equal(t, domain.CodeValidation, domain.CodeFrom(err))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "invalid server must not create the file")
}
