// Package localstore persists whole JSON values under named slots on disk.
// It mirrors the browser localStorage contract the frontend used: one key,
// one serialized value, read and written as a whole.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// ReadSlot unmarshals the slot's content into out. A missing slot or corrupt
// JSON leaves out untouched and returns false; callers treat both as empty.
func (s *Store) ReadSlot(name string, out any) bool {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

// WriteSlot replaces the slot's content with the JSON encoding of v.
// The write goes through a temp file and rename so a crash never leaves a
// half-written slot behind.
func (s *Store) WriteSlot(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", name, err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write slot %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replace slot %s: %w", name, err)
	}
	return nil
}

func (s *Store) DeleteSlot(name string) error {
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
