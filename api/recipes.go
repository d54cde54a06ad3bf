package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/foodgram/backend/api/responses"
	"github.com/foodgram/backend/internal/recipes"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/models"
	"github.com/gin-gonic/gin"
)

// recipeFilter reads the list filters from the query string
func recipeFilter(c *gin.Context) (models.RecipeFilter, error) {
	filter := models.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, errors.Invalid.Explain("validation error").
				WithField("invalid", "author", "Select a valid choice. That choice is not one of the available choices.")
		}
		author := uint(id)
		filter.AuthorID = &author
	}
	return filter, nil
}

func (s *Server) sanitizeRecipe(req *models.CreateRecipeRequest) {
	req.Name = s.validator.Sanitize(req.Name)
	req.Text = s.validator.Sanitize(req.Text)
}

// listRecipes godoc
// @Summary List recipes
// @Description Newest first. is_favorited and is_in_shopping_cart only match for authenticated users.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "1 to list favorites"
// @Param is_in_shopping_cart query int false "1 to list the shopping cart"
// @Success 200 {object} responses.PageResponse[models.RecipeResponse]
// @Failure 404 {object} errors.ProblemDetails "Invalid page"
// @Router /api/recipes/ [get]
func (s *Server) listRecipes(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	filter, err := recipeFilter(c)
	if err != nil {
		responses.Error(c, err)
		return
	}
	page, err := s.svc.Recipes.List(c.Request.Context(), viewerID(c), filter, p)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Paginated(c, page)
}

// getRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeResponse
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/ [get]
func (s *Server) getRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := s.svc.Recipes.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, recipe)
}

// createRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body models.CreateRecipeRequest true "Recipe"
// @Success 201 {object} models.RecipeResponse
// @Failure 400 {object} errors.ProblemDetails
// @Failure 401 {object} errors.ProblemDetails
// @Router /api/recipes/ [post]
func (s *Server) createRecipe(c *gin.Context) {
	var req models.CreateRecipeRequest
	if !s.bind(c, &req) {
		return
	}
	s.sanitizeRecipe(&req)

	recipe, err := s.svc.Recipes.Create(c.Request.Context(), viewerID(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Created(c, recipe)
}

// updateRecipe godoc
// @Summary Partially update a recipe
// @Description Ingredients are required; omitted fields keep their value.
// @Tags recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body models.UpdateRecipeRequest true "Changes"
// @Success 200 {object} models.RecipeResponse
// @Failure 400 {object} errors.ProblemDetails
// @Failure 403 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/ [patch]
func (s *Server) updateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateRecipeRequest
	if !s.authorize(c, id) || !decode(c, &req) || !s.validate(c, &req) {
		return
	}
	if req.Name != nil {
		name := s.validator.Sanitize(*req.Name)
		req.Name = &name
	}
	if req.Text != nil {
		text := s.validator.Sanitize(*req.Text)
		req.Text = &text
	}
	s.update(c, id, &req)
}

// replaceRecipe godoc
// @Summary Replace a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Param request body models.CreateRecipeRequest true "Recipe"
// @Success 200 {object} models.RecipeResponse
// @Failure 400 {object} errors.ProblemDetails
// @Failure 403 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/ [put]
func (s *Server) replaceRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CreateRecipeRequest
	if !s.authorize(c, id) || !decode(c, &req) || !s.validate(c, &req) {
		return
	}
	s.sanitizeRecipe(&req)
	s.update(c, id, &models.UpdateRecipeRequest{
		Ingredients: req.Ingredients,
		Tags:        req.Tags,
		Image:       &req.Image,
		Name:        &req.Name,
		Text:        &req.Text,
		CookingTime: &req.CookingTime,
	})
}

func (s *Server) update(c *gin.Context, id uint, req *models.UpdateRecipeRequest) {
	recipe, err := s.svc.Recipes.Update(c.Request.Context(), viewerID(c), id, req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, recipe)
}

// authorize rejects writes to missing recipes and to recipes of other authors
func (s *Server) authorize(c *gin.Context, id uint) bool {
	if err := s.svc.Recipes.Authorize(c.Request.Context(), viewerID(c), id); err != nil {
		responses.Error(c, err)
		return false
	}
	return true
}

// deleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/ [delete]
func (s *Server) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Recipes.Delete(c.Request.Context(), viewerID(c), id); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}

// getShortLink godoc
// @Summary Short link to a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.ShortLinkResponse
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/get-link/ [get]
func (s *Server) getShortLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := s.svc.ShortLinks.Link(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, link)
}

// resolveShortLink godoc
// @Summary Follow a short link
// @Tags recipes
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} errors.ProblemDetails
// @Router /s/{code}/ [get]
func (s *Server) resolveShortLink(c *gin.Context) {
	recipeID, err := s.svc.ShortLinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, s.svc.ShortLinks.RecipeURL(recipeID))
}

// addFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeMinified
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/favorite/ [post]
func (s *Server) addFavorite(c *gin.Context) {
	s.addToList(c, s.svc.Recipes.AddFavorite)
}

// removeFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/favorite/ [delete]
func (s *Server) removeFavorite(c *gin.Context) {
	s.removeFromList(c, s.svc.Recipes.RemoveFavorite)
}

// addToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeMinified
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/shopping_cart/ [post]
func (s *Server) addToCart(c *gin.Context) {
	s.addToList(c, s.svc.Recipes.AddToCart)
}

// removeFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/recipes/{id}/shopping_cart/ [delete]
func (s *Server) removeFromCart(c *gin.Context) {
	s.removeFromList(c, s.svc.Recipes.RemoveFromCart)
}

type listAdder func(ctx context.Context, userID, recipeID uint) (*models.RecipeMinified, error)

type listRemover func(ctx context.Context, userID, recipeID uint) error

func (s *Server) addToList(c *gin.Context, add listAdder) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), viewerID(c), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Created(c, recipe)
}

func (s *Server) removeFromList(c *gin.Context, remove listRemover) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), viewerID(c), id); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}

// downloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredient totals over every recipe in the cart as a text file
// @Tags recipes
// @Produce plain
// @Security TokenAuth
// @Success 200 {string} string "Shopping list"
// @Failure 401 {object} errors.ProblemDetails
// @Router /api/recipes/download_shopping_cart/ [get]
func (s *Server) downloadShoppingCart(c *gin.Context) {
	items, err := s.svc.Recipes.ShoppingList(c.Request.Context(), viewerID(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Attachment(c, recipes.ShoppingListFilename, recipes.RenderShoppingList(items))
}
