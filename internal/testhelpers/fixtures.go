package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "S3cure-pass!"

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateIngredient inserts an ingredient.
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

// CreateTag inserts a tag whose slug equals its name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: name}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create tag: %v", err)
	}
	return tag
}

// Amount pairs an ingredient with a quantity for CreateRecipe.
type Amount struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe by author with the given ingredient amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts ...Amount) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " description",
		CookingTime: 10,
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}
	for _, a := range amounts {
		link := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: a.Ingredient.ID, Amount: a.Amount}
		if err := db.Omit("Ingredient").Create(link).Error; err != nil {
			t.Fatalf("failed to link ingredient: %v", err)
		}
	}
	return recipe
}

// AddToCart puts recipe into user's shopping cart.
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	entry := &models.ShoppingCartEntry{UserID: user.ID, RecipeID: recipe.ID}
	if err := db.Omit("User", "Recipe").Create(entry).Error; err != nil {
		t.Fatalf("failed to add recipe to cart: %v", err)
	}
}
