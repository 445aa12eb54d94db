// Package uploads stores payment screenshot files submitted with a checkout.
package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/craftmart/storefront/internal/config"
)

// Store persists one uploaded file and reports the name it was stored under.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// Module provides the disk-backed store to Fx.
var Module = fx.Provide(func(cfg config.Config) Store {
	return NewDiskStore(cfg.Uploads.Dir)
})

// DiskStore writes uploads into a single directory, created lazily on first use.
type DiskStore struct {
	dir string
}

// NewDiskStore builds a store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save persists the file under a millisecond-prefixed name. The time prefix
// keeps names collision-resistant at expected submission rates.
func (s *DiskStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeName(originalName))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return name, nil
}

// sanitizeName strips any path components and characters that would not
// survive a URL or a filesystem round trip.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	replacer := strings.NewReplacer(" ", "_", "\t", "_", "\n", "_", "#", "_", "?", "_", "%", "_")
	return replacer.Replace(name)
}

// MemoryStore keeps uploads in memory. Used by tests as a Store double.
type MemoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

// Save reads the content into memory under a sequence-prefixed name.
func (s *MemoryStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	name := fmt.Sprintf("%d-%s", s.seq, sanitizeName(originalName))
	s.files[name] = data
	return name, nil
}

// Get returns the stored content for name.
func (s *MemoryStore) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Len reports how many files were stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
