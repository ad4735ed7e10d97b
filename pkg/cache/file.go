package cache

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

// fileItem is the on-disk envelope for one cached value.
type fileItem struct {
	Value    json.RawMessage `json:"value"`
	ExpireAt time.Time       `json:"expire_at"`
}

// FileCache implements Service with one JSON file per key under a directory.
// Entries survive process restarts best-effort; expired files are removed
// lazily on read.
type FileCache struct {
	dir string
	mu  sync.Mutex
}

// NewFileCache creates the directory if needed and returns a file cache.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("file cache: dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file cache: mkdir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

func (fc *FileCache) path(key string) string {
	// Keys contain colons and CJK; hash them for safe file names.
	return filepath.Join(fc.dir, HashKey(key)+".json")
}

func (fc *FileCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var raw json.RawMessage
	switch v := value.(type) {
	case string:
		raw, _ = json.Marshal(v)
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		raw = b
	}

	expireAt := time.Now().Add(expiration)
	if expiration <= 0 {
		expireAt = time.Now().Add(7 * 24 * time.Hour)
	}

	data, err := json.Marshal(fileItem{Value: raw, ExpireAt: expireAt})
	if err != nil {
		return err
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	tmp := fc.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("file cache: write: %w", err)
	}
	return os.Rename(tmp, fc.path(key))
}

func (fc *FileCache) Get(_ context.Context, key string, dest interface{}) error {
	fc.mu.Lock()
	data, err := os.ReadFile(fc.path(key))
	fc.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrCacheMiss
		}
		return err
	}

	var item fileItem
	if err := json.Unmarshal(data, &item); err != nil {
		// Corrupt entry: treat as miss and drop it.
		_ = os.Remove(fc.path(key))
		return ErrCacheMiss
	}
	if time.Now().After(item.ExpireAt) {
		_ = os.Remove(fc.path(key))
		return ErrCacheMiss
	}

	if strPtr, ok := dest.(*string); ok {
		var s string
		if err := json.Unmarshal(item.Value, &s); err == nil {
			*strPtr = s
			return nil
		}
		*strPtr = string(item.Value)
		return nil
	}
	return json.Unmarshal(item.Value, dest)
}

func (fc *FileCache) Delete(_ context.Context, keys ...string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	for _, key := range keys {
		if err := os.Remove(fc.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// DeleteByPattern clears the whole directory; file names are hashed so
// pattern matching over keys is not possible.
func (fc *FileCache) DeleteByPattern(_ context.Context, _ string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	entries, err := os.ReadDir(fc.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			_ = os.Remove(filepath.Join(fc.dir, e.Name()))
		}
	}
	return nil
}

func (fc *FileCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	for _, key := range keys {
		var discard json.RawMessage
		if err := fc.Get(ctx, key, &discard); err == nil {
			return true, nil
		}
	}
	return false, nil
}

func (fc *FileCache) Increment(ctx context.Context, key string) (int64, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var n int64
	data, err := os.ReadFile(fc.path(key))
	if err == nil {
		var item fileItem
		if json.Unmarshal(data, &item) == nil && time.Now().Before(item.ExpireAt) {
			_ = json.Unmarshal(item.Value, &n)
		}
	}
	n++
	raw, _ := json.Marshal(n)
	out, _ := json.Marshal(fileItem{Value: raw, ExpireAt: time.Now().Add(7 * 24 * time.Hour)})
	if err := os.WriteFile(fc.path(key), out, 0o644); err != nil {
		return 0, err
	}
	return n, nil
}

func (fc *FileCache) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return false, nil
	}
	var item fileItem
	if err := json.Unmarshal(data, &item); err != nil {
		return false, nil
	}
	item.ExpireAt = time.Now().Add(expiration)
	out, err := json.Marshal(item)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(fc.path(key), out, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func (fc *FileCache) MSet(ctx context.Context, values map[string]interface{}, expiration time.Duration) error {
	for key, value := range values {
		if err := fc.Set(ctx, key, value, expiration); err != nil {
			return err
		}
	}
	return nil
}

func (fc *FileCache) MGet(ctx context.Context, keys ...string) (map[string]string, error) {
	results := make(map[string]string)
	for _, key := range keys {
		var s string
		if err := fc.Get(ctx, key, &s); err == nil {
			results[key] = s
		}
	}
	return results, nil
}

func (fc *FileCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := fc.Exists(ctx, key)
	if err != nil || ok {
		return false, err
	}
	return true, fc.Set(ctx, key, "locked", ttl)
}

func (fc *FileCache) Unlock(ctx context.Context, key string) error {
	return fc.Delete(ctx, key)
}

// Close is a no-op; files stay on disk for the next run.
func (fc *FileCache) Close() error { return nil }
