package api

import (
	"github.com/foodgram/backend/api/responses"
	"github.com/gin-gonic/gin"
)

// listTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/tags/ [get]
func (s *Server) listTags(c *gin.Context) {
	items, err := s.svc.Tags.List(c.Request.Context())
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, items)
}

// getTag godoc
// @Summary Get a tag
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.Tag
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/tags/{id}/ [get]
func (s *Server) getTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tag, err := s.svc.Tags.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, tag)
}

// listIngredients godoc
// @Summary List ingredients
// @Description Case-insensitive prefix search on the name
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /api/ingredients/ [get]
func (s *Server) listIngredients(c *gin.Context) {
	items, err := s.svc.Ingredients.List(c.Request.Context(), c.Query("name"))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, items)
}

// suggestIngredients godoc
// @Summary Fuzzy ingredient suggestions
// @Description Ingredients ranked by edit distance to the name
// @Tags ingredients
// @Produce json
// @Param name query string true "Approximate name"
// @Param limit query int false "Maximum suggestions"
// @Success 200 {array} models.IngredientSuggestion
// @Router /api/ingredients/suggest/ [get]
func (s *Server) suggestIngredients(c *gin.Context) {
	items, err := s.svc.Ingredients.Suggest(c.Request.Context(), c.Query("name"), queryInt(c, "limit", 0))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, items)
}

// getIngredient godoc
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/ingredients/{id}/ [get]
func (s *Server) getIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := s.svc.Ingredients.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, item)
}
