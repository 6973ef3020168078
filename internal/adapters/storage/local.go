// Package storage persists original uploaded artifacts on the local
// filesystem, named by content digest. Artifacts are written once and never
// deleted while the owning document exists.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/muhasebe-app/muhasebe_backend/internal/core/ports"
)

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// LocalStore writes artifacts under a single directory. The reference it
// hands out is the digest-based file name, so re-uploading identical bytes is
// naturally deduplicated.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

var _ ports.ArtifactStore = (*LocalStore)(nil)

// Save writes content to disk and returns its reference and sha256 hex digest.
func (s *LocalStore) Save(content []byte, mediaType string) (string, string, error) {
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	ext, ok := extensions[mediaType]
	if !ok {
		ext = ".bin"
	}
	ref := digest + ext

	path := filepath.Join(s.dir, ref)
	if _, err := os.Stat(path); err == nil {
		return ref, digest, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write artifact %s: %w", ref, err)
	}
	return ref, digest, nil
}

// Read returns the stored artifact bytes for a reference.
func (s *LocalStore) Read(ref string) ([]byte, error) {
	// The reference is a bare file name; reject anything path-like.
	if filepath.Base(ref) != ref {
		return nil, fmt.Errorf("invalid artifact reference %q", ref)
	}
	content, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", ref, err)
	}
	return content, nil
}
