package api

import (
	"github.com/foodgram/backend/api/responses"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// adminListRecipes godoc
// @Summary Staff recipe listing
// @Description Search matches recipe name, author username or author email
// @Tags admin
// @Produce json
// @Security TokenAuth
// @Param search query string false "Search text"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PageResponse[models.AdminRecipeRow]
// @Failure 403 {object} errors.ProblemDetails
// @Router /api/admin/recipes/ [get]
func (s *Server) adminListRecipes(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := s.svc.Recipes.AdminList(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Paginated(c, page)
}

// adminDeleteRecipe godoc
// @Summary Delete any recipe
// @Tags admin
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/admin/recipes/{id}/ [delete]
func (s *Server) adminDeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Recipes.AdminDelete(c.Request.Context(), id); err != nil {
		responses.Error(c, err)
		return
	}
	s.logger.Info("recipe removed by staff", zap.Uint("recipe_id", id), zap.Uint("staff_id", viewerID(c)))
	responses.NoContent(c)
}

// adminListUsers godoc
// @Summary Staff user listing
// @Description Search matches username or email
// @Tags admin
// @Produce json
// @Security TokenAuth
// @Param search query string false "Search text"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PageResponse[models.AdminUserRow]
// @Failure 403 {object} errors.ProblemDetails
// @Router /api/admin/users/ [get]
func (s *Server) adminListUsers(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := s.svc.Users.AdminList(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Paginated(c, page)
}
