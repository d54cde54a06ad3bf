package shortlinks

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/metrics"
	"github.com/foodgram/backend/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxAttempts = 5
)

// Service creates and resolves recipe short links
type Service struct {
	logger     *zap.Logger
	db         *gorm.DB
	cache      Cache
	codeLength int
	baseURL    string
}

// NewService creates a short link service. cache may be nil.
func NewService(logger *zap.Logger, db *gorm.DB, cache Cache, codeLength int, baseURL string) *Service {
	if codeLength <= 0 || codeLength > models.MaxShortCodeLength {
		codeLength = models.DefaultShortCodeSize
	}
	return &Service{
		logger:     logger.Named("shortlinks"),
		db:         db,
		cache:      cache,
		codeLength: codeLength,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// GetOrCreate returns the short link of recipeID, creating it on first use
func (s *Service) GetOrCreate(ctx context.Context, recipeID uint) (*models.ShortLink, error) {
	db := s.db.WithContext(ctx)

	found, err := dbutil.Exists(db.Where("id = ?", recipeID), &models.Recipe{})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NotFound.Explain("No Recipe matches the given query.")
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		link, err := s.findByRecipe(ctx, recipeID)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, errors.NotFound) {
			return nil, err
		}

		code, err := generateCode(s.codeLength)
		if err != nil {
			return nil, err
		}
		link = &models.ShortLink{RecipeID: recipeID, ShortCode: code}
		err = db.Create(link).Error
		if err == nil {
			s.logger.Debug("short link created", zap.Uint("recipe_id", recipeID), zap.String("code", code))
			return link, nil
		}
		// either the code collided or a concurrent request created the
		// link for this recipe; the next attempt tells them apart
		if !dbutil.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to create short link: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique short code after %d attempts", maxAttempts)
}

// Link returns the public short URL of recipeID
func (s *Service) Link(ctx context.Context, recipeID uint) (*models.ShortLinkResponse, error) {
	link, err := s.GetOrCreate(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return &models.ShortLinkResponse{ShortLink: fmt.Sprintf("%s/s/%s/", s.baseURL, link.ShortCode)}, nil
}

// Resolve returns the recipe id a code points to
func (s *Service) Resolve(ctx context.Context, code string) (uint, error) {
	if s.cache != nil {
		id, err := s.cache.Get(ctx, code)
		if err == nil {
			metrics.ShortLinksResolved.WithLabelValues("cache_hit").Inc()
			return id, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("short link cache unavailable", zap.Error(err))
		}
	}

	link, err := dbutil.FindOne[models.ShortLink](s.db.WithContext(ctx).Where("short_code = ?", code))
	if errors.Is(err, errors.NotFound) {
		metrics.ShortLinksResolved.WithLabelValues("not_found").Inc()
		return 0, errors.NotFound.Explain("Short link not found.")
	}
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, code, link.RecipeID); err != nil {
			s.logger.Warn("failed to cache short link", zap.Error(err))
		}
	}
	metrics.ShortLinksResolved.WithLabelValues("db").Inc()
	return link.RecipeID, nil
}

// RecipeURL is the frontend page a short link redirects to
func (s *Service) RecipeURL(recipeID uint) string {
	return fmt.Sprintf("%s/recipes/%d/", s.baseURL, recipeID)
}

func (s *Service) findByRecipe(ctx context.Context, recipeID uint) (*models.ShortLink, error) {
	return dbutil.FindOne[models.ShortLink](s.db.WithContext(ctx).Where("recipe_id = ?", recipeID))
}

func generateCode(length int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
