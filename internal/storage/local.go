// Package storage persists profile image blobs and hands back opaque
// references. Durability is out of scope; the local filesystem implementation
// mirrors the static image directory the API serves from.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the blob storage collaborator consumed by the user module.
type Store interface {
	// Store writes the blob and returns a reference usable as a profile_image value.
	Store(ctx context.Context, data []byte, ext string) (string, error)
}

type localStore struct {
	dir string
}

// NewLocalStore creates a filesystem-backed Store rooted at dir.
// The directory is created if it does not exist.
func NewLocalStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %q: %w", dir, err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Store(ctx context.Context, data []byte, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	name := fmt.Sprintf("%s.%s", strings.ReplaceAll(uuid.NewString(), "-", ""), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %q: %w", path, err)
	}
	return path, nil
}
