package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shortcode"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

var testImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png bytes"))

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func newServer(t *testing.T, db *gorm.DB) http.Handler {
	cfg := &config.Config{
		ServerHost:      "localhost",
		ServerPort:      "0",
		BaseURL:         "http://foodgram.test",
		JWTSecret:       "integration-secret",
		JWTTTL:          time.Hour,
		EmailFrom:       "noreply@foodgram.local",
		EmailRateWindow: time.Hour,
		MediaDir:        t.TempDir(),
		MediaURL:        "/media/",
	}
	srv, err := server.New(context.Background(), cfg, db, nil, server.WithMailer(&service.LogMailer{}))
	require.NoError(t, err)
	return srv.Handler()
}

func TestShoppingListEndToEnd(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	handler := newServer(t, db)
	anon := &client{t: t, handler: handler}

	w := anon.do(http.MethodPost, "/api/users/", map[string]string{
		"email":      "cook@example.com",
		"username":   "cook",
		"first_name": "Анна",
		"last_name":  "Петрова",
		"password":   "Sup3r-secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = anon.do(http.MethodPost, "/api/auth/token/login/", map[string]string{
		"email":    "cook@example.com",
		"password": "Sup3r-secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	cook := &client{t: t, handler: handler, token: token.AuthToken}

	tag := testhelpers.CreateTag(t, db, "breakfast")
	flour := testhelpers.CreateIngredient(t, db, "Мука", "г")
	egg := testhelpers.CreateIngredient(t, db, "Яйцо", "шт")
	milk := testhelpers.CreateIngredient(t, db, "Молоко", "мл")

	create := func(name string, amounts map[uint]int) uint {
		ingredients := make([]map[string]interface{}, 0, len(amounts))
		for id, amount := range amounts {
			ingredients = append(ingredients, map[string]interface{}{"id": id, "amount": amount})
		}
		w := cook.do(http.MethodPost, "/api/recipes/", map[string]interface{}{
			"ingredients":  ingredients,
			"tags":         []uint{tag.ID},
			"image":        testImage,
			"name":         name,
			"text":         "Готовить с любовью.",
			"cooking_time": 15,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var recipe types.RecipeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))
		return recipe.ID
	}

	pancakes := create("Блины", map[uint]int{flour.ID: 100, egg.ID: 2, milk.ID: 200})
	bread := create("Хлеб", map[uint]int{flour.ID: 50})

	for _, id := range []uint{pancakes, bread} {
		w := cook.do(http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart/", id), nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = cook.do(http.MethodGet, "/api/recipes/download_shopping_cart/?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rows, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Ингредиент", "Единица измерения", "Количество"},
		{"Молоко", "мл", "200"},
		{"Мука", "г", "150"},
		{"Яйцо", "шт", "2"},
	}, rows)

	w = cook.do(http.MethodPost, "/download", map[string]string{"format": "pdf"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = cook.do(http.MethodGet, fmt.Sprintf("/api/recipes/%d/get-link/", pancakes), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var link types.ShortLinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))

	w = anon.do(http.MethodGet, strings.TrimPrefix(link.ShortLink, "http://foodgram.test"), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/recipes/%d/", pancakes), w.Header().Get("Location"))

	// legacy base-62 links still resolve
	w = anon.do(http.MethodGet, "/r/"+shortcode.Encode(uint64(bread))+"/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestShortCodeCollisionRetryPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	author := testhelpers.CreateUser(t, db, "author")
	tag := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")

	taken := "TAKEN01"
	existing := &models.Recipe{AuthorID: author.ID, Name: "Old", Text: "Old", CookingTime: 5, ShortCode: &taken}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(existing).Error)

	links, err := service.NewShortLinkService(db, "http://foodgram.test", 8)
	require.NoError(t, err)
	images := service.NewLocalImageStore(t.TempDir(), "/media/")
	recipes := service.NewRecipeService(db, images, links).
		WithCodeGenerator(shortcode.Sequence("TAKEN01", "TAKEN01", "FRESH01"))

	recipe, err := recipes.CreateRecipe(context.Background(), author.ID, &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 10}},
		Tags:        []uint{tag.ID},
		Image:       testImage,
		Name:        "New",
		Text:        "New",
		CookingTime: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, recipe.ShortCode)
	assert.Equal(t, "FRESH01", *recipe.ShortCode)
	require.Len(t, recipe.Ingredients, 1)
}
