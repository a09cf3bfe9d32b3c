package service_test

import (
	"encoding/base64"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

var testImage = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("not really a png"))

type recipeEnv struct {
	db       *gorm.DB
	recipes  *service.RecipeService
	links    *service.ShortLinkService
	images   *service.LocalImageStore
	mediaDir string
	author   *models.User
	tag      *models.Tag
	flour    *models.Ingredient
	egg      *models.Ingredient
}

func newRecipeEnv(t *testing.T) *recipeEnv {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	mediaDir := t.TempDir()
	images := service.NewLocalImageStore(mediaDir, "/media/")
	links, err := service.NewShortLinkService(db, "http://foodgram.test", 16)
	if err != nil {
		t.Fatalf("failed to create short link service: %v", err)
	}
	return &recipeEnv{
		db:       db,
		recipes:  service.NewRecipeService(db, images, links),
		links:    links,
		images:   images,
		mediaDir: mediaDir,
		author:   testhelpers.CreateUser(t, db, "author"),
		tag:      testhelpers.CreateTag(t, db, "breakfast"),
		flour:    testhelpers.CreateIngredient(t, db, "Мука", "г"),
		egg:      testhelpers.CreateIngredient(t, db, "Яйцо", "шт"),
	}
}

func (e *recipeEnv) request(name string) *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{
			{ID: e.flour.ID, Amount: 100},
			{ID: e.egg.ID, Amount: 2},
		},
		Tags:        []uint{e.tag.ID},
		Image:       testImage,
		Name:        name,
		Text:        "Смешать и испечь.",
		CookingTime: 20,
	}
}
