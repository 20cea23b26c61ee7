package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/config"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "saves"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "athanor.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return map[string]KV{"file": fs, "sqlite": db, "memory": NewMemoryStore()}
}

func TestKVContract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get("journal"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing key: expected ErrNotFound, got %v", err)
			}
			if err := kv.Set("journal", []byte("a")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set("journal", []byte("b")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := kv.Get("journal")
			if err != nil || string(got) != "b" {
				t.Fatalf("Get = %q, %v", got, err)
			}
			if err := kv.Remove("journal"); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if err := kv.Remove("journal"); err != nil {
				t.Errorf("removing a missing key should succeed, got %v", err)
			}
			if _, err := kv.Get("journal"); !errors.Is(err, ErrNotFound) {
				t.Errorf("after remove: %v", err)
			}
		})
	}
}

func TestYAMLHelpers(t *testing.T) {
	type doc struct {
		Pattern  string   `yaml:"pattern"`
		Elements []string `yaml:"elements"`
	}
	kv := NewMemoryStore()
	in := doc{Pattern: "spiral", Elements: []string{"agua", "fogo"}}
	if err := SetYAML(kv, "session", in); err != nil {
		t.Fatal(err)
	}
	var out doc
	if err := GetYAML(kv, "session", &out); err != nil {
		t.Fatal(err)
	}
	if out.Pattern != "spiral" || len(out.Elements) != 2 {
		t.Errorf("got %+v", out)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := fs.Set(key, nil); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("%q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for store, want := range map[string]string{
		config.StoreFile:   "*storage.FileStore",
		config.StoreSQLite: "*storage.SQLiteStore",
		config.StoreMemory: "*storage.MemoryStore",
	} {
		kv, err := Open(&config.Config{Store: store, SaveDir: dir})
		if err != nil {
			t.Fatalf("%s: %v", store, err)
		}
		if got := typeName(kv); got != want {
			t.Errorf("%s: got %s", store, got)
		}
		kv.Close()
	}
	if _, err := Open(&config.Config{Store: "redis"}); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func typeName(kv KV) string {
	switch kv.(type) {
	case *FileStore:
		return "*storage.FileStore"
	case *SQLiteStore:
		return "*storage.SQLiteStore"
	case *MemoryStore:
		return "*storage.MemoryStore"
	}
	return "?"
}
