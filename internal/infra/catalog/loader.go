// Package catalog reads and writes the server configuration document.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mcpbridge/internal/domain"
)

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("catalog")}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	setPreferenceDefaults(v)
	return v
}

func setPreferenceDefaults(v *viper.Viper) {
	v.SetDefault("preferences.defaultTimeout", domain.DefaultTimeoutMS)
	v.SetDefault("preferences.maxRetries", 0)
	v.SetDefault("preferences.cacheSchemas", false)
	v.SetDefault("preferences.cacheTTL", 0)
}

// rawServerDocument carries the servers section. It is decoded with
// encoding/json rather than viper because server names, env keys and header
// names are case-sensitive and viper lowercases map keys.
type rawServerDocument struct {
	Servers map[string]rawServerConfig `json:"servers"`
}

type rawServerConfig struct {
	Transport  string            `json:"transport"`
	Command    string            `json:"command"`
	Args       []string          `json:"args"`
	Env        map[string]string `json:"env"`
	Cwd        string            `json:"cwd"`
	URL        string            `json:"url"`
	APIKey     string            `json:"apiKey"`
	Headers    map[string]string `json:"headers"`
	Method     string            `json:"method"`
	Enabled    *bool             `json:"enabled"`
	TimeoutMS  int               `json:"timeout"`
	MaxRetries int               `json:"maxRetries"`
}

type rawPreferences struct {
	DefaultTimeoutMS int  `mapstructure:"defaultTimeout"`
	MaxRetries       int  `mapstructure:"maxRetries"`
	CacheSchemas     bool `mapstructure:"cacheSchemas"`
	CacheTTLSeconds  int  `mapstructure:"cacheTTL"`
}

// Load reads, env-expands, decodes and validates the config document.
func (l *Loader) Load(ctx context.Context, path string) (domain.Catalog, error) {
	if path == "" {
		return domain.Catalog{}, domain.Ef(domain.CodeConfigNotFound, "config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Catalog{}, domain.E(domain.CodeConfigNotFound,
				fmt.Sprintf("config file %q does not exist", path), err).
				WithSuggestion("run \"mcpbridge servers add\" to create one")
		}
		return domain.Catalog{}, domain.E(domain.CodeConfigNotFound, fmt.Sprintf("read config: %v", err), err)
	}

	expanded, missing, err := expandConfigEnv(data)
	if err != nil {
		return domain.Catalog{}, err
	}
	if len(missing) > 0 {
		l.logger.Warn("missing environment variables in config",
			zap.String("path", path), zap.Strings("missing", missing))
	}

	v := newConfigViper()
	if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
		return domain.Catalog{}, domain.E(domain.CodeConfigParse, fmt.Sprintf("parse config: %v", err), err)
	}
	var rawPrefs rawPreferences
	if err := v.UnmarshalKey("preferences", &rawPrefs); err != nil {
		return domain.Catalog{}, domain.E(domain.CodeConfigParse, fmt.Sprintf("decode preferences: %v", err), err)
	}
	prefs := domain.Preferences{
		DefaultTimeoutMS: rawPrefs.DefaultTimeoutMS,
		MaxRetries:       rawPrefs.MaxRetries,
		CacheSchemas:     rawPrefs.CacheSchemas,
		CacheTTLSeconds:  rawPrefs.CacheTTLSeconds,
	}
	if prefs.DefaultTimeoutMS <= 0 {
		prefs.DefaultTimeoutMS = domain.DefaultTimeoutMS
	}

	var doc rawServerDocument
	if err := json.Unmarshal(expanded, &doc); err != nil {
		return domain.Catalog{}, domain.E(domain.CodeConfigParse, fmt.Sprintf("decode config: %v", err), err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Catalog{}, err
	}

	servers := make(map[string]domain.ServerConfig, len(doc.Servers))
	for name, raw := range doc.Servers {
		cfg := normalizeServerConfig(raw, prefs)
		if err := cfg.Validate(name); err != nil {
			return domain.Catalog{}, err
		}
		servers[name] = cfg
	}

	return domain.Catalog{
		Servers:     servers,
		Preferences: prefs,
	}, nil
}

func normalizeServerConfig(raw rawServerConfig, prefs domain.Preferences) domain.ServerConfig {
	enabled := true
	if raw.Enabled != nil {
		enabled = *raw.Enabled
	}
	timeout := raw.TimeoutMS
	if timeout == 0 {
		timeout = prefs.DefaultTimeoutMS
	}
	return domain.ServerConfig{
		Transport:  domain.NormalizeTransport(raw.Transport),
		Command:    raw.Command,
		Args:       raw.Args,
		Env:        raw.Env,
		Cwd:        raw.Cwd,
		URL:        raw.URL,
		APIKey:     raw.APIKey,
		Headers:    raw.Headers,
		Method:     raw.Method,
		Enabled:    enabled,
		TimeoutMS:  timeout,
		MaxRetries: raw.MaxRetries,
	}
}
