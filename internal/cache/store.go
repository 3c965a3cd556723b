package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/carelist/internal/logging"
)

const (
	fileExtension = ".json"
	dirPerm       = 0o750
	filePerm      = 0o600
	bytesPerMB    = 1 << 20
)

// Common cache errors.
var (
	ErrNotFound     = errors.New("cache entry not found")
	ErrExpired      = errors.New("cache entry expired")
	ErrInvalidKey   = errors.New("cache key cannot be empty")
	ErrDisabled     = errors.New("cache is disabled")
	ErrEmptyDir     = errors.New("cache directory cannot be empty")
	ErrSizeExceeded = errors.New("cache size limit reached")
)

// FileStore keeps cache entries as JSON files in one directory.
// It is safe for concurrent use.
type FileStore struct {
	cfg    Config
	now    func() time.Time
	logger zerolog.Logger

	mu sync.RWMutex
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// NewFileStore creates a store for cfg, creating the directory when the
// cache is enabled. A disabled store answers every call with ErrDisabled.
func NewFileStore(cfg Config, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{cfg: cfg, now: time.Now, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.ComponentLogger(s.logger, "cache")

	if !cfg.Enabled {
		return s, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return s, nil
}

// Enabled reports whether the store reads and writes entries.
func (s *FileStore) Enabled() bool {
	return s.cfg.Enabled
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.cfg.Dir
}

// TTL returns the lifetime of new entries.
func (s *FileStore) TTL() time.Duration {
	return s.cfg.TTL
}

// Get returns the live entry for key.
func (s *FileStore) Get(key string) (*Entry, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entry, err := s.read(s.path(key))
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if entry.ExpiredAt(s.now()) {
		if delErr := s.Delete(key); delErr != nil {
			s.logger.Debug().Err(delErr).Str("key", key).Msg("removing expired entry")
		}
		return nil, ErrExpired
	}
	return entry, nil
}

// Set stores data under key, replacing any previous entry.
func (s *FileStore) Set(key string, data json.RawMessage) error {
	if err := s.check(key); err != nil {
		return err
	}

	entry := NewEntry(key, data, s.now(), s.cfg.TTL)
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSizeMB > 0 {
		size, sizeErr := s.size()
		if sizeErr != nil {
			return sizeErr
		}
		if size+int64(len(raw)) > int64(s.cfg.MaxSizeMB)*bytesPerMB {
			return fmt.Errorf("%w: %d MB", ErrSizeExceeded, s.cfg.MaxSizeMB)
		}
	}

	target := s.path(key)
	tmp := target + ".tmp"
	if writeErr := os.WriteFile(tmp, raw, filePerm); writeErr != nil {
		return fmt.Errorf("writing cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, target); renameErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", renameErr)
	}
	return nil
}

// Delete removes the entry for key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if err := s.check(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.walk(func(path string, _ os.DirEntry) error {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// CleanupExpired removes expired entries and returns how many were removed.
// Unreadable files are skipped.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.cfg.Enabled {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	err := s.walk(func(path string, _ os.DirEntry) error {
		entry, readErr := s.read(path)
		if readErr != nil || !entry.ExpiredAt(now) {
			return nil //nolint:nilerr // Unreadable entries are left for Clear.
		}
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

// Size returns the total size of the entries in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.cfg.Enabled {
		return 0, ErrDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size()
}

// Count returns the number of entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.cfg.Enabled {
		return 0, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	err := s.walk(func(string, os.DirEntry) error {
		count++
		return nil
	})
	return count, err
}

func (s *FileStore) check(key string) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

func (s *FileStore) size() (int64, error) {
	var total int64
	err := s.walk(func(_ string, d os.DirEntry) error {
		if info, infoErr := d.Info(); infoErr == nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// walk calls fn for every entry file. Callers hold the lock.
func (s *FileStore) walk(fn func(path string, d os.DirEntry) error) error {
	dirEntries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, d := range dirEntries {
		if d.IsDir() || filepath.Ext(d.Name()) != fileExtension {
			continue
		}
		if fnErr := fn(filepath.Join(s.cfg.Dir, d.Name()), d); fnErr != nil {
			return fnErr
		}
	}
	return nil
}

func (s *FileStore) read(path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var entry Entry
	if unmarshalErr := json.Unmarshal(raw, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", unmarshalErr)
	}
	return &entry, nil
}

// path maps a key to its file. Keys from GenerateKey are hex, so only
// separators need escaping for hand-built keys.
func (s *FileStore) path(key string) string {
	safe := filepath.Base(filepath.Clean("/" + key))
	return filepath.Join(s.cfg.Dir, safe+fileExtension)
}
