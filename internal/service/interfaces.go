package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines user lookups, avatars and subscriptions
type IUserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	SetAvatar(ctx context.Context, userID uuid.UUID, dataURL string) (string, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error
	Subscribe(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, userID uuid.UUID) ([]models.User, error)
	AuthorRecipes(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error)
}

// ITagService defines read access to tags
type ITagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
}

// IIngredientService defines read access to the ingredient catalogue
type IIngredientService interface {
	SearchIngredients(ctx context.Context, name string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uint) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID uuid.UUID, id uint, req *types.RecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID uuid.UUID, id uint) error
	ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error)
	Flags(ctx context.Context, userID uuid.UUID, recipeIDs []uint) (map[uint]RecipeFlags, error)
}

// IShortLinkService resolves and issues public short links
type IShortLinkService interface {
	ShortLink(ctx context.Context, recipeID uint) (string, error)
	Resolve(ctx context.Context, code string) (uint, error)
	Forget(recipeID uint)
	Backfill(ctx context.Context) (int, error)
}

// IShoppingListService builds and delivers shopping lists
type IShoppingListService interface {
	Build(ctx context.Context, userID uuid.UUID, format shoppinglist.Format) (*shoppinglist.Artifact, error)
	Email(ctx context.Context, userID uuid.UUID, to string, format shoppinglist.Format) error
}

// IImageStore persists uploaded images and returns their public URL
type IImageStore interface {
	Save(ctx context.Context, folder string, dataURL string) (string, error)
	Delete(ctx context.Context, url string) error
}
