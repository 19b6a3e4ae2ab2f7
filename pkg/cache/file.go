package cache

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultDir is where page files are written when no directory is configured.
var DefaultDir = os.TempDir()

// FileStore keeps each entry in its own file under a directory.
// The key is the file name; freshness is decided by the file's mtime.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at dir with the given TTL.
// An empty dir means [DefaultDir]; a ttl of 0 means [DefaultTTL].
// The directory is created if it does not exist.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the directory holding the cache files.
func (s *FileStore) Dir() string { return s.dir }

// TTL returns the freshness window.
func (s *FileStore) TTL() time.Duration { return s.ttl }

// Path returns the file path used for key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// IsFresh returns false if the file does not exist, true if its
// modification time is within the TTL of now, and false otherwise.
func (s *FileStore) IsFresh(ctx context.Context, key string) (bool, error) {
	info, err := os.Stat(s.Path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.now().Sub(info.ModTime()) <= s.ttl, nil
}

// Read returns the file contents for key, or ErrNotFound.
func (s *FileStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path(key))
	}
	return data, err
}

// Write overwrites the file for key with data.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(s.Path(key), data, 0o644)
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Glob returns the keys whose file names match pattern (see [filepath.Match]).
func (s *FileStore) Glob(pattern string) ([]string, error) {
	matches, err := fs.Glob(os.DirFS(s.dir), pattern)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error {
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
