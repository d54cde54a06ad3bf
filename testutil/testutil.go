package testutil

import (
	"fmt"
	"testing"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/pkg/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB("file::memory:?_foreign_keys=1", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts an active user with a placeholder password hash
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "unusable",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag whose name is derived from slug
func CreateTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: "Tag " + slug, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateIngredient inserts an ingredient
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateRecipe inserts a recipe by author with the given ingredient amounts and tags
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and serve.",
		Image:       "recipes/images/test.png",
		CookingTime: 10,
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	require.NoError(t, db.Omit("Tags.*").Create(recipe).Error)

	for ingredient, amount := range amounts {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}).Error)
	}
	return recipe
}
