package theme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// Store persists the theme flag.
type Store interface {
	// Load returns the stored value and false when nothing is stored.
	Load() (string, bool, error)
	Save(value string) error
}

// MemoryStore keeps the flag in memory.
type MemoryStore struct {
	mu    sync.Mutex
	value string
	set   bool
}

// NewMemoryStore returns a store; an empty initial value means unset.
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{value: initial, set: initial != ""}
}

func (s *MemoryStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.set, nil
}

func (s *MemoryStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value, s.set = value, true
	return nil
}

// fileData is the on-disk layout of the theme file.
type fileData struct {
	Theme     string    `yaml:"theme"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// FileStore keeps the flag in a small YAML file guarded by a lock file, so
// a CLI run and the tool server can share it.
type FileStore struct {
	path     string
	fileLock *flock.Flock
	mu       sync.Mutex
	now      func() time.Time
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:     path,
		fileLock: flock.New(path + ".lock"),
		now:      time.Now,
	}
}

// Path returns the theme file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) lock(exclusive bool) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = s.fileLock.TryLockContext(ctx, 50*time.Millisecond)
	} else {
		locked, err = s.fileLock.TryRLockContext(ctx, 50*time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock")
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}

// Load reads the stored value. A missing or empty file means unset.
func (s *FileStore) Load() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create theme dir: %w", err)
	}
	unlock, err := s.lock(false)
	if err != nil {
		return "", false, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read theme file: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}

	var fd fileData
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return "", false, fmt.Errorf("failed to parse theme file: %w", err)
	}
	return fd.Theme, fd.Theme != "", nil
}

// Save writes the value through a temp file and rename.
func (s *FileStore) Save(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create theme dir: %w", err)
	}
	unlock, err := s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(fileData{Theme: value, UpdatedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode theme file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace theme file: %w", err)
	}
	return nil
}

// Current reads the theme from a store, defaulting to dark.
func Current(s Store) (Theme, error) {
	v, ok, err := s.Load()
	if err != nil {
		return Dark, err
	}
	if !ok {
		return Dark, nil
	}
	return FromStored(v), nil
}
