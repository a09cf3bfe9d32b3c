package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the HTTP layer depends on
type Services struct {
	DB           *gorm.DB
	Auth         service.IAuthService
	Users        service.IUserService
	Tags         service.ITagService
	Ingredients  service.IIngredientService
	Recipes      service.IRecipeService
	Favorites    RelationToggler
	Cart         RelationToggler
	ShortLinks   service.IShortLinkService
	ShoppingList service.IShoppingListService
	EmailLimiter *middleware.RateLimiter
}

// HealthCheck returns the health status of the API and its database
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, svc *Services) {
	RegisterValidators()

	router.GET("/health", HealthCheck(svc.DB))
	router.GET("/api/health", HealthCheck(svc.DB))

	shoppingHandler := NewShoppingListHandler(svc.ShoppingList, svc.Users, svc.Auth, svc.EmailLimiter)

	api := router.Group("/api")
	NewAuthHandler(svc.Auth).RegisterRoutes(api)
	NewUserHandler(svc.Users, svc.Auth).RegisterRoutes(api)
	NewCatalogHandler(svc.Tags, svc.Ingredients).RegisterRoutes(api)
	shoppingHandler.RegisterRoutes(api)
	NewRecipeHandler(svc.Recipes, svc.Users, svc.ShortLinks, svc.Favorites, svc.Cart, svc.Auth).RegisterRoutes(api)
	RegisterRateLimitRoutes(api, svc.Auth, svc.EmailLimiter)

	shoppingHandler.RegisterAlias(router, "/download")
	NewShortLinkHandler(svc.ShortLinks).RegisterRoutes(router)
}

// RegisterRateLimitRoutes exposes how many shopping-list emails the caller has left
func RegisterRateLimitRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, emailLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(middleware.AuthMiddleware(validator))
	rateLimits.GET("/shopping-list-email/", func(c *gin.Context) {
		if !emailLimiter.Enabled() {
			c.JSON(http.StatusOK, gin.H{"enabled": false})
			return
		}

		cfg := emailLimiter.Config()
		remaining, resetTime, err := emailLimiter.GetRemainingRequests(c.Request.Context(), middleware.UserID(c).String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check rate limit"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"enabled":    true,
			"limit":      cfg.Limit,
			"remaining":  remaining,
			"reset_time": resetTime.Unix(),
			"window":     strconv.Itoa(int(cfg.Window.Seconds())) + "s",
		})
	})
}
