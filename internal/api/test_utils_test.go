package api

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testBaseURL = "http://foodgram.test"

// recordingMailer keeps every message it is asked to send
type recordingMailer struct {
	mu       sync.Mutex
	messages []*service.Message
	err      error
}

func (m *recordingMailer) Send(ctx context.Context, msg *service.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *recordingMailer) sent() []*service.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*service.Message(nil), m.messages...)
}

type testAPI struct {
	router   *gin.Engine
	db       *gorm.DB
	auth     *service.AuthService
	mailer   *recordingMailer
	mediaDir string
}

type testOptions struct {
	mailer service.Mailer
	redis  *redis.Client
	limit  int
}

func setupTestAPI(t *testing.T) *testAPI {
	return setupTestAPIWith(t, testOptions{})
}

func setupTestAPIWith(t *testing.T, opts testOptions) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)
	recorder := &recordingMailer{}
	var mailer service.Mailer = recorder
	if opts.mailer != nil {
		mailer = opts.mailer
	}

	mediaDir := t.TempDir()
	images := service.NewLocalImageStore(mediaDir, "/media/")
	shortLinks, err := service.NewShortLinkService(db, testBaseURL, 64)
	if err != nil {
		t.Fatalf("failed to create short link service: %v", err)
	}
	auth := service.NewAuthService(db, "test-secret", time.Hour)

	router := gin.New()
	router.Use(middleware.Recovery())
	RegisterRoutes(router, &Services{
		DB:          db,
		Auth:        auth,
		Users:       service.NewUserService(db, images),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Recipes:     service.NewRecipeService(db, images, shortLinks),
		Favorites:   service.NewFavoriteStore(db),
		Cart:        service.NewCartStore(db),
		ShortLinks:  shortLinks,
		ShoppingList: service.NewShoppingListService(
			shoppinglist.NewAggregator(db),
			shoppinglist.NewExporter(""),
			mailer,
		),
		EmailLimiter: middleware.NewEmailRateLimiter(opts.redis, opts.limit, time.Hour),
	})

	return &testAPI{router: router, db: db, auth: auth, mailer: recorder, mediaDir: mediaDir}
}

// token issues a JWT for user
func (a *testAPI) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := a.auth.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// performRequest sends body as JSON and authenticates with the Token scheme
// when token is not empty.
func (a *testAPI) performRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

// seedCart fills user's cart with two recipes sharing flour
func seedCart(t *testing.T, db *gorm.DB, user *models.User) {
	t.Helper()
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	egg := testhelpers.CreateIngredient(t, db, "Egg", "pcs")
	milk := testhelpers.CreateIngredient(t, db, "Milk", "ml")

	pancakes := testhelpers.CreateRecipe(t, db, user, "Pancakes",
		testhelpers.Amount{Ingredient: flour, Amount: 100},
		testhelpers.Amount{Ingredient: egg, Amount: 2},
		testhelpers.Amount{Ingredient: milk, Amount: 200},
	)
	bread := testhelpers.CreateRecipe(t, db, user, "Bread",
		testhelpers.Amount{Ingredient: flour, Amount: 50},
	)
	testhelpers.AddToCart(t, db, user, pancakes)
	testhelpers.AddToCart(t, db, user, bread)
}
