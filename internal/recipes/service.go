package recipes

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

var errNotAuthor = errors.Forbidden.Explain("You do not have permission to perform this action.")

// UserPresenter renders authors as seen by a viewer
type UserPresenter interface {
	Represent(ctx context.Context, viewerID uint, users []models.User) ([]models.UserResponse, error)
}

// Service manages recipes and the per-user recipe lists
type Service struct {
	logger       *zap.Logger
	db           *gorm.DB
	users        UserPresenter
	storage      media.Storage
	maxImageSize int
}

// NewService creates a recipe service. A positive maxImageSize caps decoded images in bytes.
func NewService(logger *zap.Logger, db *gorm.DB, users UserPresenter, storage media.Storage, maxImageSize int) *Service {
	return &Service{
		logger:       logger.Named("recipes"),
		db:           db,
		users:        users,
		storage:      storage,
		maxImageSize: maxImageSize,
	}
}

// Create stores a new recipe by authorID
func (s *Service) Create(ctx context.Context, authorID uint, req *models.CreateRecipeRequest) (*models.RecipeResponse, error) {
	if err := s.checkIngredients(ctx, req.Ingredients); err != nil {
		return nil, err
	}
	tags, err := s.loadTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	key, err := media.Store(ctx, s.storage, "image", media.RecipePrefix, req.Image, s.maxImageSize)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       key,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags.*").Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", dbutil.WrapError(err))
		}
		return createIngredientRows(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}

	metrics.RecipesCreated.Inc()
	s.logger.Info("recipe created", zap.Uint("recipe_id", recipe.ID), zap.Uint("author_id", authorID))
	return s.Get(ctx, authorID, recipe.ID)
}

// Update changes a recipe owned by actorID. Ingredients are always replaced;
// tags, image and scalar fields change only when present.
func (s *Service) Update(ctx context.Context, actorID, id uint, req *models.UpdateRecipeRequest) (*models.RecipeResponse, error) {
	recipe, err := s.getModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != actorID {
		return nil, errNotAuthor
	}

	if err := s.checkIngredients(ctx, req.Ingredients); err != nil {
		return nil, err
	}
	var tags []models.Tag
	if req.Tags != nil {
		if tags, err = s.loadTags(ctx, req.Tags); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	newKey := ""
	if req.Image != nil {
		if newKey, err = media.Store(ctx, s.storage, "image", media.RecipePrefix, *req.Image, s.maxImageSize); err != nil {
			return nil, err
		}
		updates["image"] = newKey
	}

	oldKey := recipe.Image
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", dbutil.WrapError(err))
			}
		}
		if req.Tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return fmt.Errorf("failed to update tags: %w", err)
			}
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredients: %w", err)
		}
		return createIngredientRows(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.removeImage(ctx, newKey)
		return nil, err
	}
	if newKey != "" {
		s.removeImage(ctx, oldKey)
	}

	return s.Get(ctx, actorID, recipe.ID)
}

// Delete removes a recipe owned by actorID together with its dependent rows
func (s *Service) Delete(ctx context.Context, actorID, id uint) error {
	recipe, err := s.getModel(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return errNotAuthor
	}
	return s.deleteRecipe(ctx, recipe)
}

func (s *Service) deleteRecipe(ctx context.Context, recipe *models.Recipe) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&models.RecipeIngredient{},
			&models.FavoriteRecipe{},
			&models.ShoppingCart{},
			&models.ShortLink{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete recipe rows: %w", err)
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.removeImage(ctx, recipe.Image)
	s.logger.Info("recipe deleted", zap.Uint("recipe_id", recipe.ID))
	return nil
}

func (s *Service) getModel(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := dbutil.FindOne[models.Recipe](s.db.WithContext(ctx).Where("id = ?", id))
	if errors.Is(err, errors.NotFound) {
		return nil, errors.NotFound.Explain("No Recipe matches the given query.")
	}
	return recipe, err
}

// Authorize checks that recipe id exists and is owned by actorID
func (s *Service) Authorize(ctx context.Context, actorID, id uint) error {
	recipe, err := s.getModel(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != actorID {
		return errNotAuthor
	}
	return nil
}

func (s *Service) checkIngredients(ctx context.Context, items []models.RecipeIngredientInput) error {
	invalid := func(msg string) error {
		return errors.Invalid.Explain("validation error").WithField("invalid", "ingredients", msg)
	}
	if len(items) == 0 {
		return invalid("Ingredients field is required and cannot be empty.")
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return invalid("Ingredients must be unique.")
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	var found []uint
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return dbutil.WrapError(err)
	}
	existing := make(map[uint]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}
	for _, item := range items {
		if _, ok := existing[item.ID]; !ok {
			return invalid(fmt.Sprintf("Ingredient with id %d does not exist.", item.ID))
		}
	}
	return nil
}

func (s *Service) loadTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, errors.Invalid.Explain("validation error").
			WithField("invalid", "tags", "Tags field is required and cannot be empty.")
	}

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	byID := make(map[uint]models.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}

	ordered := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		tag, ok := byID[id]
		if !ok {
			return nil, errors.Invalid.Explain("validation error").
				WithField("does_not_exist", "tags", fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, id))
		}
		ordered = append(ordered, tag)
	}
	return ordered, nil
}

func createIngredientRows(tx *gorm.DB, recipeID uint, items []models.RecipeIngredientInput) error {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount})
	}
	if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create recipe ingredients: %w", dbutil.WrapError(err))
	}
	return nil
}

func (s *Service) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
	}
}
