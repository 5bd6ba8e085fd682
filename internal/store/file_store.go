package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists each key as one file under a data directory, with a
// total byte quota across all keys (localStorage-style). Writes go through a
// temp file and rename so a failed Set never leaves a partial value.
type FileStore struct {
	dir    string
	quota  int64
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates the data directory if needed. quotaBytes <= 0 disables
// the quota.
func NewFileStore(dir string, quotaBytes int64, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &FileStore{dir: dir, quota: quotaBytes, logger: logger}, nil
}

// Get reads the value for key; ok is false when the key has never been set.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set persists value under key, enforcing the byte quota. On quota rejection
// the previous value, if any, is untouched.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		used, err := s.usedBytesExcept(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > s.quota {
			s.logger.Warn("store write rejected",
				slog.String("key", key),
				slog.Int64("quota_bytes", s.quota),
				slog.Int64("attempted_bytes", used+int64(len(value))),
			)
			return ErrCapacityExceeded
		}
	}

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write value: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to persist key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key; removing an absent key is not an error.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

// usedBytesExcept sums the stored sizes of all keys other than the one about
// to be replaced.
func (s *FileStore) usedBytesExcept(key string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan store dir: %w", err)
	}
	skip := filepath.Base(s.path(key))
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name() == skip || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}
