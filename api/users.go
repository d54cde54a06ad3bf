package api

import (
	"github.com/foodgram/backend/api/responses"
	"github.com/foodgram/backend/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// login issues an auth token
// @Summary Obtain an auth token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} errors.ProblemDetails "Invalid credentials"
// @Failure 429 {object} errors.ProblemDetails "Throttled"
// @Router /api/auth/token/login/ [post]
func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.svc.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		responses.Error(c, err)
		return
	}
	token, err := s.svc.Auth.IssueToken(user)
	if err != nil {
		responses.Error(c, err)
		return
	}
	s.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	responses.Success(c, models.LoginResponse{AuthToken: token})
}

// logout revokes the token used for this request
// @Summary Revoke the current auth token
// @Tags auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} errors.ProblemDetails
// @Router /api/auth/token/logout/ [post]
func (s *Server) logout(c *gin.Context) {
	if err := s.svc.Auth.RevokeToken(c.Request.Context(), c.GetString(ctxToken)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}

// register creates a user account
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account"
// @Success 201 {object} models.UserCreatedResponse
// @Failure 400 {object} errors.ProblemDetails
// @Router /api/users/ [post]
func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if !s.bind(c, &req) {
		return
	}
	req.FirstName = s.validator.Sanitize(req.FirstName)
	req.LastName = s.validator.Sanitize(req.LastName)

	user, err := s.svc.Users.Register(c.Request.Context(), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Created(c, user)
}

// listUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} responses.PageResponse[models.UserResponse]
// @Failure 404 {object} errors.ProblemDetails "Invalid page"
// @Router /api/users/ [get]
func (s *Server) listUsers(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := s.svc.Users.List(c.Request.Context(), viewerID(c), p)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Paginated(c, page)
}

// getUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/users/{id}/ [get]
func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := s.svc.Users.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, user)
}

// me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} errors.ProblemDetails
// @Router /api/users/me/ [get]
func (s *Server) me(c *gin.Context) {
	id := viewerID(c)
	user, err := s.svc.Users.Get(c.Request.Context(), id, id)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, user)
}

// setAvatar godoc
// @Summary Upload an avatar
// @Tags users
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body models.SetAvatarRequest true "Base64 data URI"
// @Success 200 {object} models.AvatarResponse
// @Failure 400 {object} errors.ProblemDetails
// @Router /api/users/me/avatar/ [put]
func (s *Server) setAvatar(c *gin.Context) {
	var req models.SetAvatarRequest
	if !s.bind(c, &req) {
		return
	}
	resp, err := s.svc.Users.SetAvatar(c.Request.Context(), viewerID(c), req.Avatar)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, resp)
}

// deleteAvatar godoc
// @Summary Remove the avatar
// @Tags users
// @Security TokenAuth
// @Success 204
// @Router /api/users/me/avatar/ [delete]
func (s *Server) deleteAvatar(c *gin.Context) {
	if err := s.svc.Users.DeleteAvatar(c.Request.Context(), viewerID(c)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}

// setPassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Security TokenAuth
// @Param request body models.SetPasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} errors.ProblemDetails
// @Router /api/users/set_password/ [post]
func (s *Server) setPassword(c *gin.Context) {
	var req models.SetPasswordRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.svc.Users.SetPassword(c.Request.Context(), viewerID(c), &req); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}

// listSubscriptions godoc
// @Summary Authors the current user follows
// @Tags users
// @Produce json
// @Security TokenAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} responses.PageResponse[models.UserWithRecipesResponse]
// @Router /api/users/subscriptions/ [get]
func (s *Server) listSubscriptions(c *gin.Context) {
	p, ok := pagination(c)
	if !ok {
		return
	}
	page, err := s.svc.Subscriptions.List(c.Request.Context(), viewerID(c), p, recipesLimit(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Paginated(c, page)
}

// subscribe godoc
// @Summary Follow an author
// @Tags users
// @Produce json
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} models.UserWithRecipesResponse
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/users/{id}/subscribe/ [post]
func (s *Server) subscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := s.svc.Subscriptions.Subscribe(c.Request.Context(), viewerID(c), id, recipesLimit(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Created(c, resp)
}

// unsubscribe godoc
// @Summary Unfollow an author
// @Tags users
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} errors.ProblemDetails
// @Failure 404 {object} errors.ProblemDetails
// @Router /api/users/{id}/subscribe/ [delete]
func (s *Server) unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Subscriptions.Unsubscribe(c.Request.Context(), viewerID(c), id); err != nil {
		responses.Error(c, err)
		return
	}
	responses.NoContent(c)
}
