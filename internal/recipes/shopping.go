package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/models"
)

const (
	ShoppingListHeader   = "Shopping List\n"
	ShoppingListFilename = "shopping_list.txt"
)

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by ingredient name and unit, ordered by name.
func (s *Service) ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListItem, error) {
	items := []models.ShoppingListItem{}
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Order("ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}
	return items, nil
}

// RenderShoppingList formats items as the downloadable text file
func RenderShoppingList(items []models.ShoppingListItem) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, ShoppingListHeader)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.TotalAmount))
	}
	return strings.Join(lines, "\n")
}
