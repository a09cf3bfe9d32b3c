package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
)

// shortLinkCacheSize bounds the in-process code -> recipe id cache
const shortLinkCacheSize = 4096

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// Option customizes a Server before its routes are registered
type Option func(*options)

type options struct {
	mailer service.Mailer
	images service.IImageStore
}

// WithMailer replaces the mail transport chosen from the configuration
func WithMailer(m service.Mailer) Option {
	return func(o *options) { o.mailer = m }
}

// WithImageStore replaces the image store chosen from the configuration
func WithImageStore(s service.IImageStore) Option {
	return func(o *options) { o.images = s }
}

// New wires services and handlers. redisClient may be nil, which disables
// rate limiting.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.mailer == nil {
		o.mailer = service.NewMailer(cfg)
	}
	if o.images == nil {
		images, err := service.NewImageStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create image store: %w", err)
		}
		o.images = images
	}

	shortLinks, err := service.NewShortLinkService(db, cfg.BaseURL, shortLinkCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create short link service: %w", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL)
	userService := service.NewUserService(db, o.images)
	shoppingService := service.NewShoppingListService(
		shoppinglist.NewAggregator(db),
		shoppinglist.NewExporter(cfg.PDFFontPath),
		o.mailer,
	)

	engine := router.New(cfg)
	api.RegisterRoutes(engine, &api.Services{
		DB:           db,
		Auth:         authService,
		Users:        userService,
		Tags:         service.NewTagService(db),
		Ingredients:  service.NewIngredientService(db),
		Recipes:      service.NewRecipeService(db, o.images, shortLinks),
		Favorites:    service.NewFavoriteStore(db),
		Cart:         service.NewCartStore(db),
		ShortLinks:   shortLinks,
		ShoppingList: shoppingService,
		EmailLimiter: middleware.NewEmailRateLimiter(redisClient, cfg.EmailRateLimit, cfg.EmailRateWindow),
	})

	return &Server{
		cfg:    cfg,
		router: engine,
		http: &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:    db,
		redis: redisClient,
	}, nil
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the Redis client
func (s *Server) Shutdown(ctx context.Context) error {
	errs := []error{s.http.Shutdown(ctx)}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
