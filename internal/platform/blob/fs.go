package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dErrors "namelease/pkg/domain-errors"
)

// FSStore writes objects as files under a root directory. Keys map to
// relative paths; traversal out of the root is rejected.
type FSStore struct {
	root string
}

// NewFS returns a filesystem store rooted at path, creating it if needed.
func NewFS(root string) (*FSStore, error) {
	if root == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "blob root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Put writes data to the file addressed by key. The content type is
// dropped; the filesystem has no place for it.
func (s *FSStore) Put(_ context.Context, key string, data []byte, _ string) error {
	rel, err := sanitizeKey(key)
	if err != nil {
		return err
	}

	path := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	// Write-then-rename so a crash never leaves a half-written snapshot.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

// Get reads the object addressed by key.
func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	rel, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "object not found")
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Close is a no-op.
func (s *FSStore) Close() error {
	return nil
}

// sanitizeKey rejects keys that would escape the root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "object key is required")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "object key must be a relative path")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if strings.HasPrefix(clean, "..") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "object key must be a relative path")
	}
	return clean, nil
}
