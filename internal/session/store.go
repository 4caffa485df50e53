// Package session owns the per-account login session lifecycle: loading and
// persisting storage snapshots, probing their liveness, and driving the
// interactive login-capture flow when a snapshot is absent or stale.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/video-publisher/internal/browser"
)

// Store persists one storage snapshot per (platform, account) pair. The
// snapshot is opaque to the store.
type Store interface {
	Load(platform, account string) (*browser.StorageState, bool, error)
	Save(platform, account string, state *browser.StorageState) error
}

// FileStore keeps one JSON file per pair under a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(platform, account string) string {
	name := fmt.Sprintf("%s_%s.json", sanitize(platform), sanitize(account))
	return filepath.Join(s.dir, name)
}

// Load reads the snapshot for the pair; found is false when none exists.
func (s *FileStore) Load(platform, account string) (*browser.StorageState, bool, error) {
	data, err := os.ReadFile(s.path(platform, account))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session file: %w", err)
	}

	var state browser.StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &state, true, nil
}

// Save writes the snapshot atomically (write-then-rename) so a crash mid-write
// leaves the previous snapshot valid.
func (s *FileStore) Save(platform, account string, state *browser.StorageState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	path := s.path(platform, account)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_", "..", "_")
	return replacer.Replace(s)
}
