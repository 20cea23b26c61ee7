// Package storage is the key-value capability collaborators persist through.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
)

var (
	ErrNotFound   = errors.New("storage: key not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// KV stores opaque values by key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Close() error
}

// Open returns the backend selected by cfg.Store.
func Open(cfg *config.Config) (KV, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return NewSQLiteStore(filepath.Join(cfg.SaveDir, "athanor.db"))
	case config.StoreFile, "":
		return NewFileStore(cfg.SaveDir)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalid, cfg.Store)
	}
}

// GetYAML loads key and decodes it into v.
func GetYAML(kv KV, key string, v any) error {
	data, err := kv.Get(key)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetYAML encodes v and stores it under key.
func SetYAML(kv KV, key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(key, data)
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
