package responses

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/foodgram/backend/common/dbutil"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PageResponse is the envelope of every paginated list
type PageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Success sends a 200 OK response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment sends body as a downloadable plain text file
func Attachment(c *gin.Context, filename, body string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Paginated sends one page with absolute next and previous links
func Paginated[T any](c *gin.Context, page *dbutil.Page[T]) {
	results := page.Items
	if results == nil {
		results = []T{}
	}
	resp := PageResponse[T]{Count: page.Count, Results: results}

	p := page.Pagination
	if p.HasNext(page.Count) {
		next := pageURL(c, p.Page+1)
		resp.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		resp.Previous = &prev
	}
	c.JSON(http.StatusOK, resp)
}

// pageURL rebuilds the request URL with page replaced; page 1 drops the parameter
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Error renders err as problem details. Errors without a kind become a 500
// whose cause is attached to the context for the request logger.
func Error(c *gin.Context, err error) {
	var domainErr *errors.Error
	if !errors.As(err, &domainErr) {
		domainErr = errors.Wrap(err)
	}

	problem := domainErr.ToProblemDetails(c.Request.URL.Path)
	if domainErr.StatusCode() >= http.StatusInternalServerError {
		_ = c.Error(err)
		problem.Detail = "A server error occurred."
	}
	Problem(c, problem)
}

// Problem sends an RFC 7807 response and aborts the handler chain
func Problem(c *gin.Context, problemDetails *errors.ProblemDetails) {
	if problemDetails.TraceID == "" {
		if traceID := getTraceID(c); traceID != "" {
			problemDetails.WithTraceID(traceID)
		}
	}

	if problemDetails.Extra == nil {
		problemDetails.WithExtra("timestamp", time.Now().UTC().Format(time.RFC3339))
	}

	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(problemDetails.Status, problemDetails)
}

// getTraceID extracts the active span's trace id, falling back to the request header
func getTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return c.GetHeader("X-Trace-ID")
}
