package tags

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/foodgram/backend/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service serves the read-only tag catalogue
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a tag catalogue service
func NewService(logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{logger: logger.Named("tags"), db: db}
}

// List returns every tag ordered by name
func (s *Service) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	return tags, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := dbutil.FindOne[models.Tag](s.db.WithContext(ctx).Where("id = ?", id))
	if errors.Is(err, errors.NotFound) {
		return nil, errors.NotFound.Explain("No Tag matches the given query.")
	}
	return tag, err
}

// LoadFixtures creates the tags whose slug is not present yet.
// Items are validated before anything is written.
// It returns the number of created and already existing tags.
func (s *Service) LoadFixtures(ctx context.Context, items []models.TagFixture) (created, existing int, err error) {
	v := validation.NewValidator()
	for i, item := range items {
		if err := v.ValidateStruct(&item); err != nil {
			return 0, 0, fmt.Errorf("invalid tag fixture #%d %q: %w", i+1, item.Slug, err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			found, err := dbutil.Exists(tx.Where("slug = ?", item.Slug), &models.Tag{})
			if err != nil {
				return fmt.Errorf("failed to load tag %q: %w", item.Slug, err)
			}
			if found {
				existing++
				continue
			}
			tag := models.Tag{Name: item.Name, Color: item.Color, Slug: item.Slug}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("failed to load tag %q: %w", item.Slug, dbutil.WrapError(err))
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("tags loaded", zap.Int("created", created), zap.Int("existing", existing))
	return created, existing, nil
}
