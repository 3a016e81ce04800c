package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileBackend stores each key as a JSON file under a directory.
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates a file backend in the given directory.
// The directory will be created if it doesn't exist.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{dir: dir}, nil
}

// fileEntry wraps stored data with its key so Keys can recover it from the
// hashed file name.
type fileEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Get implements Backend.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		// Corrupt entry - treat as miss
		return nil, false, nil
	}
	return []byte(entry.Data), true, nil
}

// Set implements Backend. data must be valid JSON.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entryData, err := json.MarshalIndent(fileEntry{Key: key, Data: data, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, entryData, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Delete implements Backend.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Keys implements Backend.
func (b *FileBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	err := filepath.WalkDir(b.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var entry struct {
			Key string `json:"key"`
		}
		if json.Unmarshal(data, &entry) == nil && strings.HasPrefix(entry.Key, prefix) {
			keys = append(keys, entry.Key)
		}
		return nil
	})
	return keys, err
}

// Kind implements Backend.
func (b *FileBackend) Kind() string { return "file" }

// Close does nothing for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// path converts a key to a file path.
// Uses a hash-based directory structure so keys never need escaping.
func (b *FileBackend) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	hash := hex.EncodeToString(sum[:])
	return filepath.Join(b.dir, hash[:2], hash[2:]+".json")
}

// Ensure FileBackend implements Backend.
var _ Backend = (*FileBackend)(nil)
