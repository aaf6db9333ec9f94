package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists the session as a JSON key/value file. It is the
// durable single-user store: the session survives process restarts and is
// destroyed only by Clear. Writes go through a temp file and rename so a
// crash mid-save never leaves a torn session on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
	keys KeyNames
}

// NewFileStore returns a store persisting to path. The file and its
// parent directory are created on first Save with owner-only permissions.
func NewFileStore(path string, keys KeyNames) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path required")
	}
	if !keys.valid() {
		return nil, ErrInvalidKeyNames
	}
	return &FileStore{path: path, keys: keys}, nil
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess := &Session{
		AccessToken:  raw[f.keys.AccessToken],
		RefreshToken: raw[f.keys.RefreshToken],
	}
	if !sess.Complete() {
		return nil, ErrNotFound
	}
	if v := raw[f.keys.expiresKey()]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			sess.ExpiresAt = t
		}
	}
	return sess, nil
}

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw := map[string]string{
		f.keys.AccessToken:  s.AccessToken,
		f.keys.RefreshToken: s.RefreshToken,
	}
	if !s.ExpiresAt.IsZero() {
		raw[f.keys.expiresKey()] = s.ExpiresAt.UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
