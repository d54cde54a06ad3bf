package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// LocalStorage keeps images on an afero filesystem served under baseURL
type LocalStorage struct {
	fs      afero.Fs
	baseURL string
}

func NewLocalStorage(fs afero.Fs, baseURL string) *LocalStorage {
	return &LocalStorage{fs: fs, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStorage) Save(_ context.Context, key string, img *Image) error {
	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, key, img.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	if err := s.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}

// Fs exposes the filesystem so the router can serve it
func (s *LocalStorage) Fs() afero.Fs {
	return s.fs
}
