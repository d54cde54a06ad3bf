package recipes

import (
	"context"
	"fmt"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/metrics"
	"github.com/foodgram/backend/pkg/models"
	"go.uber.org/zap"
)

// userList is a per-user set of recipes backed by a (user_id, recipe_id) table
type userList struct {
	name  string
	label string
	entry func(userID, recipeID uint) interface{}
}

var (
	favorites = userList{
		name:  "favorite",
		label: "favorite",
		entry: func(userID, recipeID uint) interface{} {
			return &models.FavoriteRecipe{UserID: userID, RecipeID: recipeID}
		},
	}
	shoppingCart = userList{
		name:  "shopping_cart",
		label: "shopping cart",
		entry: func(userID, recipeID uint) interface{} {
			return &models.ShoppingCart{UserID: userID, RecipeID: recipeID}
		},
	}
)

// AddFavorite adds recipeID to the favorites of userID and returns the minified recipe
func (s *Service) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.RecipeMinified, error) {
	return s.addToList(ctx, favorites, userID, recipeID)
}

// RemoveFavorite removes recipeID from the favorites of userID
func (s *Service) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removeFromList(ctx, favorites, userID, recipeID)
}

// AddToCart puts recipeID into the shopping cart of userID and returns the minified recipe
func (s *Service) AddToCart(ctx context.Context, userID, recipeID uint) (*models.RecipeMinified, error) {
	return s.addToList(ctx, shoppingCart, userID, recipeID)
}

// RemoveFromCart takes recipeID out of the shopping cart of userID
func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removeFromList(ctx, shoppingCart, userID, recipeID)
}

func (s *Service) addToList(ctx context.Context, list userList, userID, recipeID uint) (*models.RecipeMinified, error) {
	recipe, err := s.getModel(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	already := errors.Invalid.Explain("Recipe is already in your %s", list.label)
	db := s.db.WithContext(ctx)
	entry := list.entry(userID, recipeID)

	found, err := dbutil.Exists(db.Where("user_id = ? AND recipe_id = ?", userID, recipeID), entry)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, already
	}
	if err := db.Create(entry).Error; err != nil {
		if dbutil.IsDuplicate(err) {
			return nil, already
		}
		return nil, fmt.Errorf("failed to add recipe to %s: %w", list.label, err)
	}

	metrics.ListToggles.WithLabelValues(list.name, "add").Inc()
	s.logger.Debug("recipe added to list",
		zap.String("list", list.name), zap.Uint("user_id", userID), zap.Uint("recipe_id", recipeID))
	return s.minified(recipe), nil
}

func (s *Service) removeFromList(ctx context.Context, list userList, userID, recipeID uint) error {
	if _, err := s.getModel(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(list.entry(0, 0))
	if result.Error != nil {
		return fmt.Errorf("failed to remove recipe from %s: %w", list.label, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.Invalid.Explain("Recipe is not in your %s", list.label)
	}

	metrics.ListToggles.WithLabelValues(list.name, "remove").Inc()
	return nil
}
