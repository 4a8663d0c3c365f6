package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicBase is the URL prefix under which stored images are served.
const PublicBase = "/uploads"

// Store persists uploaded images and maps them to public URLs.
type Store interface {
	// Save writes data under a generated collision-free name and returns the
	// public-relative path ("/uploads/<name>.<ext>").
	Save(data []byte, ext string) (string, error)
	// Delete removes the file behind a public path. Missing files are a no-op.
	Delete(publicPath string) error
}

// LocalStore implements Store on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Save writes data to a uuid-named file, creating the root directory on first use.
func (s *LocalStore) Save(data []byte, ext string) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	name := uuid.New().String() + ext

	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return PublicBase + "/" + name, nil
}

// Delete removes the file referenced by publicPath if it exists.
func (s *LocalStore) Delete(publicPath string) error {
	if publicPath == "" {
		return nil
	}
	// Only the final path element is used, so a crafted public path cannot
	// escape the upload root.
	name := filepath.Base(strings.TrimPrefix(publicPath, PublicBase+"/"))
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
