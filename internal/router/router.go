package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// New builds the gin engine with the global middleware chain, the metrics
// endpoint and, for local media storage, the static media route.
func New(cfg *config.Config) *gin.Engine {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
	)

	router.GET("/metrics", gin.WrapH(middleware.ErrorHandler(promhttp.Handler())))

	// Local media is only served when images are not stored in S3
	if cfg.S3BucketName == "" && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaDir)
	}

	return router
}
