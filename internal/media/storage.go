package media

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/spf13/afero"
)

const (
	AvatarPrefix = "users/avatars"
	RecipePrefix = "recipes/images"
)

// Storage stores uploaded images by key
type Storage interface {
	Save(ctx context.Context, key string, img *Image) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Store decodes value and saves it under a new key below prefix
func Store(ctx context.Context, storage Storage, field, prefix, value string, maxSize int) (string, error) {
	img, err := DecodeDataURI(field, value, maxSize)
	if err != nil {
		return "", err
	}
	key := NewKey(prefix, img)
	if err := storage.Save(ctx, key, img); err != nil {
		return "", err
	}
	return key, nil
}

// NewStorage builds the backend selected by cfg.Backend
func NewStorage(ctx context.Context, cfg config.MediaConfig) (Storage, error) {
	switch cfg.Backend {
	case "local":
		fs := afero.NewBasePathFs(afero.NewOsFs(), cfg.Root)
		return NewLocalStorage(fs, cfg.BaseURL), nil
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
	}
}
