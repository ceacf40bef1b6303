package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"mcpbridge/internal/domain"
)

// persistedDocument is the on-disk shape of the config file.
type persistedDocument struct {
	Servers     map[string]domain.ServerConfig `json:"servers"`
	Preferences domain.Preferences             `json:"preferences,omitempty"`
}

// Store mutates the config document on disk. Writes are atomic: the new
// content lands in a temp file that replaces the original.
type Store struct {
	loader *Loader
	path   string
}

func NewStore(loader *Loader, path string) *Store {
	return &Store{loader: loader, path: path}
}

// AddServer appends a validated server entry. Adding a name that already
// exists fails; use RemoveServer first to replace one.
func (s *Store) AddServer(ctx context.Context, name string, cfg domain.ServerConfig) error {
	if err := cfg.Validate(name); err != nil {
		return err
	}

	catalog, err := s.loadOrEmpty(ctx)
	if err != nil {
		return err
	}
	if _, exists := catalog.Servers[name]; exists {
		return domain.Ef(domain.CodeServerExists, "server %q already exists", name).
			WithDetail("server", name).
			WithSuggestion(fmt.Sprintf("remove it first with \"mcpbridge servers remove %s\"", name))
	}

	catalog.Servers[name] = cfg
	return s.save(catalog)
}

// RemoveServer deletes a server entry from the document.
func (s *Store) RemoveServer(ctx context.Context, name string) error {
	catalog, err := s.loader.Load(ctx, s.path)
	if err != nil {
		return err
	}
	if _, exists := catalog.Servers[name]; !exists {
		known := serverNames(catalog.Servers)
		remErr := domain.Ef(domain.CodeServerNotFound, "server %q is not configured", name).
			WithDetail("configured", known)
		if similar := domain.SimilarNames(name, known); len(similar) > 0 {
			remErr = remErr.WithSimilar(similar)
		}
		return remErr
	}

	delete(catalog.Servers, name)
	return s.save(catalog)
}

func (s *Store) loadOrEmpty(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.loader.Load(ctx, s.path)
	if err == nil {
		return catalog, nil
	}
	if domain.CodeFrom(err) == domain.CodeConfigNotFound {
		return domain.Catalog{
			Servers:     make(map[string]domain.ServerConfig),
			Preferences: domain.Preferences{DefaultTimeoutMS: domain.DefaultTimeoutMS},
		}, nil
	}
	return domain.Catalog{}, err
}

func (s *Store) save(catalog domain.Catalog) error {
	doc := persistedDocument{
		Servers:     catalog.Servers,
		Preferences: catalog.Preferences,
	}
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.E(domain.CodeUnknown, "encode config", err)
	}
	encoded = append(encoded, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.E(domain.CodePermissionDenied, fmt.Sprintf("create config directory %q", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return domain.E(domain.CodePermissionDenied, "write config", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return domain.E(domain.CodePermissionDenied, "write config", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.E(domain.CodePermissionDenied, "write config", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return domain.E(domain.CodePermissionDenied, "replace config", err)
	}
	return nil
}

func serverNames(servers map[string]domain.ServerConfig) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
