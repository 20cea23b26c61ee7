package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexxanorafa/Jornada-Arquetipica/internal/storage"
)

// DefaultSlot is the save slot used when none is named.
const DefaultSlot = "session"

var ErrNoSession = errors.New("no saved session")

// SlotKey returns the storage key for a named slot.
func SlotKey(name string) string {
	if name == "" || name == DefaultSlot {
		return DefaultSlot
	}
	return DefaultSlot + "-" + name
}

func (s *Session) Save(kv storage.KV, name string) error {
	s.SavedAt = time.Now().UTC()
	if err := storage.SetYAML(kv, SlotKey(name), s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func LoadSession(kv storage.KV, name string) (*Session, error) {
	var s Session
	err := storage.GetYAML(kv, SlotKey(name), &s)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &s, nil
}

func DeleteSession(kv storage.KV, name string) error {
	return kv.Remove(SlotKey(name))
}
