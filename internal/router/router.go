package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tastoria/backend/internal/api"
	"github.com/tastoria/backend/internal/database"
	"github.com/tastoria/backend/internal/middleware"
	"github.com/tastoria/backend/internal/service"
)

// Deps are the wired dependencies the HTTP surface runs on.
type Deps struct {
	DB        *gorm.DB
	Recipes   service.IRecipeService
	Ingest    service.IIngestService
	Validator middleware.TokenValidator
	// Images may be nil when image generation is not configured.
	Images service.ImageGenerator
	// GenerateLimiter throttles the AI generation route. Nil disables it.
	GenerateLimiter *middleware.RateLimiter
}

// New builds the gin engine with all routes mounted.
func New(deps Deps) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/health", func(c *gin.Context) {
		if deps.DB != nil {
			if err := database.HealthCheck(c.Request.Context(), deps.DB); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthMiddleware(deps.Validator)
	adminRequired := middleware.AdminMiddleware(deps.Validator)

	generateLimit := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if deps.GenerateLimiter != nil {
		generateLimit = deps.GenerateLimiter.RateLimitMiddleware()
	}

	v1 := router.Group("/api/v1")
	api.NewRecipeHandler(deps.Recipes).RegisterRoutes(v1, authRequired)
	api.NewFilterHandler(deps.Recipes).RegisterRoutes(v1)
	api.NewAdminHandler(deps.Recipes, deps.Ingest, deps.Images).RegisterRoutes(v1, adminRequired, generateLimit)

	return router
}
