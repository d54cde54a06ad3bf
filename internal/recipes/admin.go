package recipes

import (
	"context"
	"strings"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/models"
	"gorm.io/gorm"
)

// AdminList returns recipes matching search on the recipe name or the author's
// username or email, with how many users favorited each.
func (s *Service) AdminList(ctx context.Context, search string, p dbutil.Pagination) (*dbutil.Page[models.AdminRecipeRow], error) {
	query := s.db.WithContext(ctx).
		Table("recipes").
		Joins("JOIN users ON users.id = recipes.author_id")
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(recipes.name) LIKE ? OR LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ?", like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if err := p.Check(count); err != nil {
		return nil, err
	}

	rows := []models.AdminRecipeRow{}
	err := query.
		Select("recipes.id, recipes.name, recipes.author_id, users.username AS author_username, recipes.cooking_time, " +
			"(SELECT COUNT(*) FROM favorite_recipes WHERE favorite_recipes.recipe_id = recipes.id) AS favorites_count").
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Scopes(p.Scope()).
		Scan(&rows).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}
	return &dbutil.Page[models.AdminRecipeRow]{Items: rows, Count: count, Pagination: p}, nil
}

// AdminDelete removes any recipe regardless of its author
func (s *Service) AdminDelete(ctx context.Context, id uint) error {
	recipe, err := s.getModel(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteRecipe(ctx, recipe)
}
