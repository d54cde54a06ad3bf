package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/foodgram/backend/api/responses"
	"github.com/foodgram/backend/internal/auth"
	"github.com/foodgram/backend/internal/identities"
	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/foodgram/backend/internal/infrastructure/ratelimit"
	"github.com/foodgram/backend/internal/ingredients"
	"github.com/foodgram/backend/internal/media"
	"github.com/foodgram/backend/internal/recipes"
	"github.com/foodgram/backend/internal/shortlinks"
	"github.com/foodgram/backend/internal/subscriptions"
	"github.com/foodgram/backend/internal/tags"
	"github.com/foodgram/backend/pkg/errors"
	"github.com/foodgram/backend/pkg/metrics"
	"github.com/foodgram/backend/pkg/validation"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/foodgram/backend/docs"
)

// Context keys set by the authentication middleware
const (
	ctxUserID  = "userID"
	ctxIsStaff = "isStaff"
	ctxToken   = "authToken"
)

var (
	errNotAuthenticated = errors.Unauthorized.Explain("Authentication credentials were not provided.")
	errInvalidToken     = errors.Unauthorized.Explain("Invalid token.")
	errNotStaff         = errors.Forbidden.Explain("You do not have permission to perform this action.")
	errThrottled        = errors.TooMany.Explain("Request was throttled.")
)

// Services are the domain services the handlers call into
type Services struct {
	Auth          *auth.Service
	Users         *identities.Service
	Tags          *tags.Service
	Ingredients   *ingredients.Service
	Recipes       *recipes.Service
	Subscriptions *subscriptions.Service
	ShortLinks    *shortlinks.Service
	Storage       media.Storage
}

// Server represents the API server
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	cfg       *config.Config
	svc       Services
	validator *validation.Validator
	limiter   *ratelimit.Registry
}

// NewServer creates the API server. limiter may be nil to disable throttling.
func NewServer(logger *zap.Logger, cfg *config.Config, svc Services, limiter *ratelimit.Registry) *Server {
	server := &Server{
		logger:    logger.Named("api"),
		cfg:       cfg,
		svc:       svc,
		validator: validation.NewValidator(),
		limiter:   limiter,
	}

	router := gin.New()

	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	router.Use(metricsMiddleware())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	if cfg.Server.MaxBodyBytes > 0 {
		router.Use(bodyLimit(cfg.Server.MaxBodyBytes))
	}

	router.NoRoute(func(c *gin.Context) {
		responses.Error(c, errors.NotFound.Explain("Not found."))
	})

	server.router = router
	server.registerRoutes()
	return server
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// Router returns the internal Gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Handler returns the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.router.GET("/s/:code/", s.resolveShortLink)

	if local, ok := s.svc.Storage.(*media.LocalStorage); ok {
		s.router.StaticFS("/media", afero.NewHttpFs(local.Fs()))
	}

	api := s.router.Group("/api", s.authenticate())
	{
		api.GET("/health/", s.healthCheck)
		api.GET("/docs/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/swagger/index.html")
		})

		authGroup := api.Group("/auth/token")
		{
			authGroup.POST("/login/", s.throttle(), s.login)
			authGroup.POST("/logout/", s.requireAuth(), s.logout)
		}

		users := api.Group("/users")
		{
			users.GET("/", s.listUsers)
			users.POST("/", s.throttle(), s.register)
			users.GET("/me/", s.requireAuth(), s.me)
			users.PUT("/me/avatar/", s.requireAuth(), s.setAvatar)
			users.DELETE("/me/avatar/", s.requireAuth(), s.deleteAvatar)
			users.POST("/set_password/", s.requireAuth(), s.setPassword)
			users.GET("/subscriptions/", s.requireAuth(), s.listSubscriptions)
			users.GET("/:id/", s.getUser)
			users.POST("/:id/subscribe/", s.requireAuth(), s.subscribe)
			users.DELETE("/:id/subscribe/", s.requireAuth(), s.unsubscribe)
		}

		api.GET("/tags/", s.listTags)
		api.GET("/tags/:id/", s.getTag)

		api.GET("/ingredients/", s.listIngredients)
		api.GET("/ingredients/suggest/", s.suggestIngredients)
		api.GET("/ingredients/:id/", s.getIngredient)

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("/", s.listRecipes)
			recipeGroup.POST("/", s.requireAuth(), s.createRecipe)
			recipeGroup.GET("/download_shopping_cart/", s.requireAuth(), s.downloadShoppingCart)
			recipeGroup.GET("/:id/", s.getRecipe)
			recipeGroup.PATCH("/:id/", s.requireAuth(), s.updateRecipe)
			recipeGroup.PUT("/:id/", s.requireAuth(), s.replaceRecipe)
			recipeGroup.DELETE("/:id/", s.requireAuth(), s.deleteRecipe)
			recipeGroup.GET("/:id/get-link/", s.getShortLink)
			recipeGroup.POST("/:id/favorite/", s.requireAuth(), s.addFavorite)
			recipeGroup.DELETE("/:id/favorite/", s.requireAuth(), s.removeFavorite)
			recipeGroup.POST("/:id/shopping_cart/", s.requireAuth(), s.addToCart)
			recipeGroup.DELETE("/:id/shopping_cart/", s.requireAuth(), s.removeFromCart)
		}

		admin := api.Group("/admin", s.requireAuth(), s.requireStaff())
		{
			admin.GET("/recipes/", s.adminListRecipes)
			admin.DELETE("/recipes/:id/", s.adminDeleteRecipe)
			admin.GET("/users/", s.adminListUsers)
		}
	}
}

// healthCheck godoc
// @Summary Health check
// @Tags system
// @Produce plain
// @Success 200 {string} string "Healthy"
// @Router /api/health/ [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "Healthy")
}

// authenticate resolves the Authorization header to a user when present.
// Requests without the header continue anonymously; a bad token is rejected.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || (!strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer")) {
			responses.Error(c, errInvalidToken)
			return
		}

		claims, err := s.svc.Auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			responses.Error(c, err)
			return
		}
		user, err := s.svc.Users.GetModel(c.Request.Context(), claims.UserID)
		if errors.Is(err, errors.NotFound) || (err == nil && !user.IsActive) {
			responses.Error(c, errInvalidToken)
			return
		}
		if err != nil {
			responses.Error(c, err)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxIsStaff, user.IsStaff)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if viewerID(c) == 0 {
			responses.Error(c, errNotAuthenticated)
			return
		}
		c.Next()
	}
}

func (s *Server) requireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsStaff) {
			responses.Error(c, errNotStaff)
			return
		}
		c.Next()
	}
}

// throttle limits requests per client IP when rate limiting is enabled
func (s *Server) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || !s.cfg.RateLimit.Enabled {
			c.Next()
			return
		}
		if !s.limiter.Allow(c.ClientIP()) {
			s.logger.Info("request throttled", zap.String("ip", c.ClientIP()), zap.String("path", c.FullPath()))
			c.Header("Retry-After", "1")
			responses.Error(c, errThrottled)
			return
		}
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// viewerID returns the authenticated user id, or 0 for anonymous requests
func viewerID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
