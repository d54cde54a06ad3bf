package api

import (
	"strconv"
	"strings"

	"github.com/foodgram/backend/api/responses"
	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/gin-gonic/gin"
)

var (
	errNotFound    = errors.NotFound.Explain("Not found.")
	errInvalidPage = errors.NotFound.Explain("Invalid page.")
)

// bind decodes the JSON body into req and validates it, writing the error response on failure
func (s *Server) bind(c *gin.Context, req interface{}) bool {
	return decode(c, req) && s.validate(c, req)
}

func decode(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		responses.Error(c, errors.Invalid.Explain("JSON parse error: %v", err))
		return false
	}
	return true
}

func (s *Server) validate(c *gin.Context, req interface{}) bool {
	if err := s.validator.ValidateStruct(req); err != nil {
		responses.Error(c, err)
		return false
	}
	return true
}

// pathID parses a numeric path parameter; anything else cannot match a resource
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		responses.Error(c, errNotFound)
		return 0, false
	}
	return uint(id), true
}

// pagination reads page and limit. A malformed page is a 404, a malformed limit falls back to the default.
func pagination(c *gin.Context) (dbutil.Pagination, bool) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			responses.Error(c, errInvalidPage)
			return dbutil.Pagination{}, false
		}
		page = n
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	return dbutil.NewPagination(page, limit), true
}

// recipesLimit reads recipes_limit; only positive integers truncate
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// queryFlag treats "1" and "true" as set
func queryFlag(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	default:
		return false
	}
}

// queryInt reads a positive integer query parameter, returning fallback when absent or malformed
func queryInt(c *gin.Context, name string, fallback int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
