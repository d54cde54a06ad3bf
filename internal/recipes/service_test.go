package recipes_test

import (
	"context"
	"testing"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/internal/identities"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/internal/recipes"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/foodgram/backend/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const imageURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fixture struct {
	svc    *recipes.Service
	db     *gorm.DB
	fs     afero.Fs
	alice  *models.User
	bob    *models.User
	salt   *models.Ingredient
	sugar  *models.Ingredient
	lunch  *models.Tag
	dinner *models.Tag
}

func setup(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	fs := afero.NewMemMapFs()
	storage := media.NewLocalStorage(fs, "http://testserver/media")
	users := identities.NewService(zap.NewNop(), db, storage, 0)

	return &fixture{
		svc:    recipes.NewService(zap.NewNop(), db, users, storage, 0),
		db:     db,
		fs:     fs,
		alice:  testutil.CreateUser(t, db, "alice"),
		bob:    testutil.CreateUser(t, db, "bob"),
		salt:   testutil.CreateIngredient(t, db, "salt", "g"),
		sugar:  testutil.CreateIngredient(t, db, "sugar", "g"),
		lunch:  testutil.CreateTag(t, db, "lunch"),
		dinner: testutil.CreateTag(t, db, "dinner"),
	}
}

func (f *fixture) createReq() *models.CreateRecipeRequest {
	return &models.CreateRecipeRequest{
		Ingredients: []models.RecipeIngredientInput{{ID: f.salt.ID, Amount: 5}, {ID: f.sugar.ID, Amount: 100}},
		Tags:        []uint{f.lunch.ID},
		Image:       imageURI,
		Name:        "Pancakes",
		Text:        "Whisk and fry.",
		CookingTime: 20,
	}
}

func fieldOf(t *testing.T, err error) string {
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	require.NotEmpty(t, e.Fields)
	return e.Fields[0].Field
}

func TestCreateRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.svc.Create(ctx, f.alice.ID, f.createReq())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", got.Name)
	assert.Equal(t, 20, got.CookingTime)
	assert.Equal(t, f.alice.ID, got.Author.ID)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "lunch", got.Tags[0].Slug)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, models.RecipeIngredientResponse{ID: f.salt.ID, Name: "salt", MeasurementUnit: "g", Amount: 5}, got.Ingredients[0])
	assert.Contains(t, got.Image, "http://testserver/media/recipes/images/")
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := f.createReq()
	req.Ingredients = append(req.Ingredients, models.RecipeIngredientInput{ID: f.salt.ID, Amount: 1})
	_, err := f.svc.Create(ctx, f.alice.ID, req)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Equal(t, "ingredients", fieldOf(t, err))

	req = f.createReq()
	req.Ingredients = []models.RecipeIngredientInput{{ID: 999, Amount: 1}}
	_, err = f.svc.Create(ctx, f.alice.ID, req)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Equal(t, "ingredients", fieldOf(t, err))

	req = f.createReq()
	req.Tags = []uint{999}
	_, err = f.svc.Create(ctx, f.alice.ID, req)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Equal(t, "tags", fieldOf(t, err))

	req = f.createReq()
	req.Image = "not an image"
	_, err = f.svc.Create(ctx, f.alice.ID, req)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Equal(t, "image", fieldOf(t, err))

	var count int64
	require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, f.createReq())
	require.NoError(t, err)

	name := "Thin pancakes"
	update := &models.UpdateRecipeRequest{
		Ingredients: []models.RecipeIngredientInput{{ID: f.sugar.ID, Amount: 50}},
		Name:        &name,
	}

	_, err = f.svc.Update(ctx, f.bob.ID, created.ID, update)
	assert.True(t, errors.Is(err, errors.Forbidden))

	_, err = f.svc.Update(ctx, f.alice.ID, 999, update)
	assert.True(t, errors.Is(err, errors.NotFound))

	got, err := f.svc.Update(ctx, f.alice.ID, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Thin pancakes", got.Name)
	assert.Equal(t, "Whisk and fry.", got.Text)
	assert.Equal(t, created.Image, got.Image)
	require.Len(t, got.Tags, 1)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, 50, got.Ingredients[0].Amount)

	var before models.Recipe
	require.NoError(t, f.db.First(&before, created.ID).Error)

	update.Tags = []uint{f.dinner.ID, f.lunch.ID}
	update.Image = new(string)
	*update.Image = imageURI
	got, err = f.svc.Update(ctx, f.alice.ID, created.ID, update)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 2)
	assert.NotEqual(t, created.Image, got.Image)

	var after models.Recipe
	require.NoError(t, f.db.First(&after, created.ID).Error)
	require.NotEqual(t, before.Image, after.Image)
	assert.Equal(t, "http://testserver/media/"+after.Image, got.Image)
	exists, _ := afero.Exists(f.fs, after.Image)
	assert.True(t, exists, "replacement image must be kept")
	exists, _ = afero.Exists(f.fs, before.Image)
	assert.False(t, exists, "previous image must be removed")

	update.Ingredients = nil
	_, err = f.svc.Update(ctx, f.alice.ID, created.ID, update)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Equal(t, "ingredients", fieldOf(t, err))
}

func TestDeleteRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.alice.ID, f.createReq())
	require.NoError(t, err)
	_, err = f.svc.AddFavorite(ctx, f.bob.ID, created.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.bob.ID, created.ID)
	require.NoError(t, err)

	assert.True(t, errors.Is(f.svc.Delete(ctx, f.bob.ID, created.ID), errors.Forbidden))
	require.NoError(t, f.svc.Delete(ctx, f.alice.ID, created.ID))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.alice.ID, created.ID), errors.NotFound))

	for _, model := range []interface{}{&models.RecipeIngredient{}, &models.FavoriteRecipe{}, &models.ShoppingCart{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	soup := testutil.CreateRecipe(t, f.db, f.alice, "Soup", map[*models.Ingredient]int{f.salt: 1}, f.lunch)
	testutil.CreateRecipe(t, f.db, f.alice, "Stew", nil, f.dinner)
	cake := testutil.CreateRecipe(t, f.db, f.bob, "Cake", map[*models.Ingredient]int{f.sugar: 200}, f.lunch, f.dinner)

	page, err := f.svc.List(ctx, 0, models.RecipeFilter{}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, "Cake", page.Items[0].Name)

	page, err = f.svc.List(ctx, 0, models.RecipeFilter{AuthorID: &f.alice.ID}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)

	page, err = f.svc.List(ctx, 0, models.RecipeFilter{TagSlugs: []string{"lunch"}}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)

	page, err = f.svc.List(ctx, 0, models.RecipeFilter{TagSlugs: []string{"lunch", "dinner"}}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Count)

	_, err = f.svc.AddFavorite(ctx, f.bob.ID, soup.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.bob.ID, cake.ID)
	require.NoError(t, err)

	page, err = f.svc.List(ctx, f.bob.ID, models.RecipeFilter{IsFavorited: true}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, soup.ID, page.Items[0].ID)
	assert.True(t, page.Items[0].IsFavorited)

	page, err = f.svc.List(ctx, f.bob.ID, models.RecipeFilter{IsInShoppingCart: true}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsInShoppingCart)

	page, err = f.svc.List(ctx, 0, models.RecipeFilter{IsFavorited: true}, dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Zero(t, page.Count)
	assert.Empty(t, page.Items)

	page, err = f.svc.List(ctx, 0, models.RecipeFilter{}, dbutil.NewPagination(2, 2))
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = f.svc.List(ctx, 0, models.RecipeFilter{}, dbutil.NewPagination(3, 2))
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestFavoriteToggle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	recipe := testutil.CreateRecipe(t, f.db, f.alice, "Soup", nil)

	minified, err := f.svc.AddFavorite(ctx, f.bob.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, minified.ID)
	assert.Equal(t, "Soup", minified.Name)
	assert.Equal(t, "http://testserver/media/recipes/images/test.png", minified.Image)

	_, err = f.svc.AddFavorite(ctx, f.bob.ID, recipe.ID)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Contains(t, err.Error(), "Recipe is already in your favorite")

	_, err = f.svc.AddFavorite(ctx, f.bob.ID, 999)
	assert.True(t, errors.Is(err, errors.NotFound))

	require.NoError(t, f.svc.RemoveFavorite(ctx, f.bob.ID, recipe.ID))
	err = f.svc.RemoveFavorite(ctx, f.bob.ID, recipe.ID)
	require.True(t, errors.Is(err, errors.Invalid))
	assert.Contains(t, err.Error(), "Recipe is not in your favorite")
}

func TestCartToggle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	recipe := testutil.CreateRecipe(t, f.db, f.alice, "Soup", nil)

	_, err := f.svc.AddToCart(ctx, f.bob.ID, recipe.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.bob.ID, recipe.ID)
	assert.Contains(t, err.Error(), "Recipe is already in your shopping cart")

	require.NoError(t, f.svc.RemoveFromCart(ctx, f.bob.ID, recipe.ID))
	err = f.svc.RemoveFromCart(ctx, f.bob.ID, recipe.ID)
	assert.Contains(t, err.Error(), "Recipe is not in your shopping cart")
}

func TestShoppingList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	flour := testutil.CreateIngredient(t, f.db, "flour", "g")
	soup := testutil.CreateRecipe(t, f.db, f.alice, "Soup", map[*models.Ingredient]int{f.salt: 5, f.sugar: 10})
	cake := testutil.CreateRecipe(t, f.db, f.alice, "Cake", map[*models.Ingredient]int{f.sugar: 200, flour: 300})
	testutil.CreateRecipe(t, f.db, f.alice, "Bread", map[*models.Ingredient]int{flour: 500})

	_, err := f.svc.AddToCart(ctx, f.bob.ID, soup.ID)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.bob.ID, cake.ID)
	require.NoError(t, err)

	items, err := f.svc.ShoppingList(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", TotalAmount: 300},
		{Name: "salt", MeasurementUnit: "g", TotalAmount: 5},
		{Name: "sugar", MeasurementUnit: "g", TotalAmount: 210},
	}, items)

	assert.Equal(t, "Shopping List\n\nflour (g) - 300\nsalt (g) - 5\nsugar (g) - 210", recipes.RenderShoppingList(items))

	empty, err := f.svc.ShoppingList(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, "Shopping List\n", recipes.RenderShoppingList(empty))
}

func TestAdminList(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	soup := testutil.CreateRecipe(t, f.db, f.alice, "Soup", nil)
	testutil.CreateRecipe(t, f.db, f.bob, "Cake", nil)
	_, err := f.svc.AddFavorite(ctx, f.bob.ID, soup.ID)
	require.NoError(t, err)

	page, err := f.svc.AdminList(ctx, "alice", dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Soup", page.Items[0].Name)
	assert.Equal(t, "alice", page.Items[0].AuthorUsername)
	assert.Equal(t, int64(1), page.Items[0].FavoritesCount)

	page, err = f.svc.AdminList(ctx, "cak", dbutil.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Count)

	require.NoError(t, f.svc.AdminDelete(ctx, soup.ID))
	assert.True(t, errors.Is(f.svc.AdminDelete(ctx, soup.ID), errors.NotFound))
}
