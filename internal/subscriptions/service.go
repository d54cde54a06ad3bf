package subscriptions

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/metrics"
	"github.com/foodgram/backend/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errSelf          = errors.Invalid.Explain("You cannot subscribe to yourself")
	errAlready       = errors.Invalid.Explain("You are already subscribed to this user")
	errNotSubscribed = errors.Invalid.Explain("You are not subscribed to this user")
)

// UserPresenter renders users as seen by a viewer
type UserPresenter interface {
	Represent(ctx context.Context, viewerID uint, users []models.User) ([]models.UserResponse, error)
}

// Service manages follow relations between users
type Service struct {
	logger  *zap.Logger
	db      *gorm.DB
	users   UserPresenter
	storage media.Storage
}

// NewService creates a subscription service
func NewService(logger *zap.Logger, db *gorm.DB, users UserPresenter, storage media.Storage) *Service {
	return &Service{
		logger:  logger.Named("subscriptions"),
		db:      db,
		users:   users,
		storage: storage,
	}
}

// Subscribe makes userID follow authorID. recipesLimit truncates the
// returned recipes when positive.
func (s *Service) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.UserWithRecipesResponse, error) {
	author, err := s.getUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, errSelf
	}

	db := s.db.WithContext(ctx)
	found, err := dbutil.Exists(db.Where("user_id = ? AND subscribed_to_id = ?", userID, authorID), &models.Subscription{})
	if err != nil {
		return nil, err
	}
	if found {
		return nil, errAlready
	}
	if err := db.Create(&models.Subscription{UserID: userID, SubscribedToID: authorID}).Error; err != nil {
		if dbutil.IsDuplicate(err) {
			return nil, errAlready
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	metrics.SubscriptionToggles.WithLabelValues("subscribe").Inc()

	out, err := s.withRecipes(ctx, userID, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Unsubscribe removes the follow relation from userID to authorID
func (s *Service) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if _, err := s.getUser(ctx, authorID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND subscribed_to_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errNotSubscribed
	}
	metrics.SubscriptionToggles.WithLabelValues("unsubscribe").Inc()
	return nil
}

// List returns a page of the authors userID follows, each with their recipes
func (s *Service) List(ctx context.Context, userID uint, p dbutil.Pagination, recipesLimit int) (*dbutil.Page[models.UserWithRecipesResponse], error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id IN (?)", s.db.Model(&models.Subscription{}).Select("subscribed_to_id").Where("user_id = ?", userID)).
		Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if err := p.Check(count); err != nil {
		return nil, err
	}

	var authors []models.User
	if err := query.Order("users.id").Scopes(p.Scope()).Find(&authors).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}

	items, err := s.withRecipes(ctx, userID, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &dbutil.Page[models.UserWithRecipesResponse]{Items: items, Count: count, Pagination: p}, nil
}

func (s *Service) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := dbutil.FindOne[models.User](s.db.WithContext(ctx).Where("id = ?", id))
	if errors.Is(err, errors.NotFound) {
		return nil, errors.NotFound.Explain("No User matches the given query.")
	}
	return user, err
}

func (s *Service) withRecipes(ctx context.Context, viewerID uint, authors []models.User, recipesLimit int) ([]models.UserWithRecipesResponse, error) {
	views, err := s.users.Represent(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserWithRecipesResponse, 0, len(views))
	for _, view := range views {
		query := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", view.ID)

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return nil, dbutil.WrapError(err)
		}

		var recipes []models.Recipe
		list := s.db.WithContext(ctx).Where("author_id = ?", view.ID).Order("created_at DESC").Order("id DESC")
		if recipesLimit > 0 {
			list = list.Limit(recipesLimit)
		}
		if err := list.Find(&recipes).Error; err != nil {
			return nil, dbutil.WrapError(err)
		}

		minified := make([]models.RecipeMinified, 0, len(recipes))
		for _, r := range recipes {
			minified = append(minified, models.RecipeMinified{
				ID:          r.ID,
				Name:        r.Name,
				Image:       s.storage.URL(r.Image),
				CookingTime: r.CookingTime,
			})
		}
		out = append(out, models.UserWithRecipesResponse{
			UserResponse: view,
			Recipes:      minified,
			RecipesCount: count,
		})
	}
	return out, nil
}
