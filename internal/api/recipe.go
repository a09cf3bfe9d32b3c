package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RelationToggler links and unlinks a recipe for a user
type RelationToggler interface {
	Add(ctx context.Context, userID uuid.UUID, recipeID uint) (*models.Recipe, error)
	Remove(ctx context.Context, userID uuid.UUID, recipeID uint) error
}

type RecipeHandler struct {
	recipeService    service.IRecipeService
	userService      service.IUserService
	shortLinkService service.IShortLinkService
	favorites        RelationToggler
	cart             RelationToggler
	validator        middleware.TokenValidator
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	userService service.IUserService,
	shortLinkService service.IShortLinkService,
	favorites RelationToggler,
	cart RelationToggler,
	validator middleware.TokenValidator,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:    recipeService,
		userService:      userService,
		shortLinkService: shortLinkService,
		favorites:        favorites,
		cart:             cart,
		validator:        validator,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	authed := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuth(h.validator)
	{
		recipes.GET("/", optional, h.ListRecipes)
		recipes.POST("/", authed, h.CreateRecipe)
		recipes.GET("/:id/", optional, h.GetRecipe)
		recipes.PATCH("/:id/", authed, h.UpdateRecipe)
		recipes.DELETE("/:id/", authed, h.DeleteRecipe)
		recipes.GET("/:id/get-link/", h.GetLink)
		recipes.POST("/:id/favorite/", authed, h.toggle(h.favorites, actionFavorite, true))
		recipes.DELETE("/:id/favorite/", authed, h.toggle(h.favorites, actionFavorite, false))
		recipes.POST("/:id/shopping_cart/", authed, h.toggle(h.cart, actionShoppingCart, true))
		recipes.DELETE("/:id/shopping_cart/", authed, h.toggle(h.cart, actionShoppingCart, false))
	}
}

// recipeContext loads the caller-specific flags for recipes
func (h *RecipeHandler) recipeContext(ctx context.Context, userID uuid.UUID, recipes []models.Recipe) (recipeContext, error) {
	rc := recipeContext{
		flags:      map[uint]service.RecipeFlags{},
		subscribed: map[string]bool{},
	}
	if userID == uuid.Nil || len(recipes) == 0 {
		return rc, nil
	}

	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	flags, err := h.recipeService.Flags(ctx, userID, ids)
	if err != nil {
		return rc, err
	}
	rc.flags = flags

	for _, r := range recipes {
		key := r.AuthorID.String()
		if _, seen := rc.subscribed[key]; seen {
			continue
		}
		subscribed, err := h.userService.IsSubscribed(ctx, userID, r.AuthorID)
		if err != nil {
			return rc, err
		}
		rc.subscribed[key] = subscribed
	}
	return rc, nil
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, action recipeAction, recipe *models.Recipe) {
	rc, err := h.recipeContext(c.Request.Context(), middleware.UserID(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, presentRecipe(action, recipe, rc))
}

// ListRecipes supports ?tags=slug (repeatable), ?author=uuid,
// ?is_favorited=1 and ?is_in_shopping_cart=1. The last two only apply to
// authenticated callers.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID := middleware.UserID(c)
	filter := service.RecipeFilter{Tags: c.QueryArray("tags")}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, fieldErrors{"author": {"Некорректный идентификатор автора."}})
			return
		}
		filter.AuthorID = id
	}
	if userID != uuid.Nil {
		if flagQuery(c, "is_favorited") {
			filter.FavoritedBy = userID
		}
		if flagQuery(c, "is_in_shopping_cart") {
			filter.InCartOf = userID
		}
	}

	ctx := c.Request.Context()
	recipes, err := h.recipeService.ListRecipes(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	rc, err := h.recipeContext(ctx, userID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]interface{}, 0, len(recipes))
	for i := range recipes {
		resp = append(resp, presentRecipe(actionList, &recipes[i], rc))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, actionRetrieve, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, actionCreate, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, actionUpdate, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink returns the public short link of a recipe, assigning a code if needed
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	link, err := h.shortLinkService.ShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: link})
}

// toggle builds the add/remove handler for a favorite-like relation
func (h *RecipeHandler) toggle(store RelationToggler, action recipeAction, add bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uintParam(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		ctx := c.Request.Context()
		userID := middleware.UserID(c)

		if !add {
			if err := store.Remove(ctx, userID, id); err != nil {
				respondError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
			return
		}

		recipe, err := store.Add(ctx, userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, presentRecipe(action, recipe, recipeContext{}))
	}
}
