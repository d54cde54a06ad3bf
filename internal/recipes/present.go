package recipes

import (
	"context"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/models"
	"gorm.io/gorm"
)

// Get returns recipe id as seen by viewerID (0 for anonymous)
func (s *Service) Get(ctx context.Context, viewerID, id uint) (*models.RecipeResponse, error) {
	if _, err := s.getModel(ctx, id); err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	if err := s.withRelations(s.db.WithContext(ctx)).Where("id = ?", id).Find(&recipes).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	out, err := s.represent(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// List returns a page of recipes, newest first, narrowed by filter
func (s *Service) List(ctx context.Context, viewerID uint, filter models.RecipeFilter, p dbutil.Pagination) (*dbutil.Page[models.RecipeResponse], error) {
	empty := &dbutil.Page[models.RecipeResponse]{Items: []models.RecipeResponse{}, Pagination: p}
	if viewerID == 0 && (filter.IsFavorited || filter.IsInShoppingCart) {
		return empty, p.Check(0)
	}

	query := s.db.WithContext(ctx).Model(&models.Recipe{})
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.IsFavorited {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.FavoriteRecipe{}).Select("recipe_id").Where("user_id = ?", viewerID))
	}
	if filter.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)",
			s.db.Model(&models.ShoppingCart{}).Select("recipe_id").Where("user_id = ?", viewerID))
	}
	query = query.Session(&gorm.Session{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	if err := p.Check(count); err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	err := s.withRelations(query).
		Order("recipes.created_at DESC").
		Order("recipes.id DESC").
		Scopes(p.Scope()).
		Find(&recipes).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}

	items, err := s.represent(ctx, viewerID, recipes)
	if err != nil {
		return nil, err
	}
	return &dbutil.Page[models.RecipeResponse]{Items: items, Count: count, Pagination: p}, nil
}

func (s *Service) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("RecipeIngredients.Ingredient")
}

func (s *Service) represent(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]models.RecipeResponse, error) {
	out := make([]models.RecipeResponse, 0, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	ids := make([]uint, 0, len(recipes))
	authors := make([]models.User, 0, len(recipes))
	seenAuthor := map[uint]bool{}
	for _, r := range recipes {
		ids = append(ids, r.ID)
		if !seenAuthor[r.AuthorID] {
			seenAuthor[r.AuthorID] = true
			authors = append(authors, r.Author)
		}
	}

	authorViews, err := s.users.Represent(ctx, viewerID, authors)
	if err != nil {
		return nil, err
	}
	authorByID := make(map[uint]models.UserResponse, len(authorViews))
	for _, a := range authorViews {
		authorByID[a.ID] = a
	}

	favorited, err := s.markedBy(ctx, &models.FavoriteRecipe{}, viewerID, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := s.markedBy(ctx, &models.ShoppingCart{}, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range recipes {
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		ingredients := make([]models.RecipeIngredientResponse, 0, len(r.RecipeIngredients))
		for _, ri := range r.RecipeIngredients {
			ingredients = append(ingredients, models.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		out = append(out, models.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           authorByID[r.AuthorID],
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            s.storage.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return out, nil
}

// markedBy returns which of recipeIDs viewerID has in the list table of model
func (s *Service) markedBy(ctx context.Context, model interface{}, viewerID uint, recipeIDs []uint) (map[uint]bool, error) {
	marked := map[uint]bool{}
	if viewerID == 0 {
		return marked, nil
	}
	var ids []uint
	if err := s.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &ids).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	for _, id := range ids {
		marked[id] = true
	}
	return marked, nil
}

func (s *Service) minified(r *models.Recipe) *models.RecipeMinified {
	return &models.RecipeMinified{
		ID:          r.ID,
		Name:        r.Name,
		Image:       s.storage.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}
