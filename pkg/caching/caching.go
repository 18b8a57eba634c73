package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache keeps fetched response bodies on disk for a limited time. It is used
// for pages that several commands read in a short window, like the archive
// index.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewCache creates the cache directory if needed. A ttl of zero disables
// the cache: Get always misses and Set is a no-op.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *Cache) path(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, fmt.Sprintf("%x", hash))
}

// Get returns the cached body for url if present and fresh.
func (c *Cache) Get(url string) ([]byte, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	p := c.path(url)

	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.now().Sub(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores body for url.
func (c *Cache) Set(url string, body []byte) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(url)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
