// Package assets mints locally-dereferenceable locations for generated media.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemoryStore holds the bytes of the most recent generated asset and serves
// them under a /assets/ URL. Only one asset lives at a time: a new Put
// supersedes the previous one, matching the single-current-result model of
// the studio. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	id   string
	data []byte
	mime string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put replaces the stored asset and returns its serving location.
func (s *MemoryStore) Put(data []byte, mimeType string) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.id = id
	s.data = data
	s.mime = mimeType
	s.mu.Unlock()

	log.Debug().Str("asset", id).Int("bytes", len(data)).Str("mime", mimeType).Msg("Asset stored")
	return "/assets/" + id, nil
}

// Get returns the stored asset if id matches the current one.
func (s *MemoryStore) Get(id string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" || id != s.id {
		return nil, "", false
	}
	return s.data, s.mime, true
}

// FileStore writes assets into a directory and returns file paths. Used by
// the CLI, where the filesystem is the display surface.
type FileStore struct {
	Dir string
}

// Put writes the asset under Dir with an extension derived from the MIME type.
func (s *FileStore) Put(data []byte, mimeType string) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+extensionFor(mimeType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	log.Debug().Str("path", path).Int("bytes", len(data)).Msg("Asset written")
	return path, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "video/mp4":
		return ".mp4"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
