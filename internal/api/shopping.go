package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
	"github.com/pageza/foodgram/backend/internal/types"
)

const msgShoppingListSent = "Список покупок отправлен на вашу почту"

// ShoppingListHandler delivers the caller's shopping list as a download or email
type ShoppingListHandler struct {
	shoppingService service.IShoppingListService
	userService     service.IUserService
	validator       middleware.TokenValidator
	emailLimiter    *middleware.RateLimiter
}

func NewShoppingListHandler(
	shoppingService service.IShoppingListService,
	userService service.IUserService,
	validator middleware.TokenValidator,
	emailLimiter *middleware.RateLimiter,
) *ShoppingListHandler {
	return &ShoppingListHandler{
		shoppingService: shoppingService,
		userService:     userService,
		validator:       validator,
		emailLimiter:    emailLimiter,
	}
}

// RegisterRoutes mounts the handler under /recipes/download_shopping_cart/ of
// the API group.
func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	h.register(router, "/recipes/download_shopping_cart/")
}

// RegisterAlias mounts the same endpoints at path, e.g. /download on the engine root.
func (h *ShoppingListHandler) RegisterAlias(router gin.IRoutes, path string) {
	h.register(router, path)
}

func (h *ShoppingListHandler) register(router gin.IRoutes, path string) {
	authed := middleware.AuthMiddleware(h.validator)
	router.GET(path, authed, h.Download)
	router.POST(path, authed, h.emailLimiter.RateLimitMiddleware(), h.Email)
}

// Download renders the list in ?format= (txt when absent or unknown)
func (h *ShoppingListHandler) Download(c *gin.Context) {
	format := shoppinglist.ParseFormat(c.Query("format"))
	artifact, err := h.shoppingService.Build(c.Request.Context(), middleware.UserID(c), format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Filename))
	c.Header("Content-Length", strconv.Itoa(len(artifact.Data)))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// Email mails the list to the given address or to the caller's own
func (h *ShoppingListHandler) Email(c *gin.Context) {
	var req types.ShoppingListEmailRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	to := req.Email
	if to == "" {
		user, err := h.userService.GetUser(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		to = user.Email
	}

	if err := h.shoppingService.Email(ctx, userID, to, shoppinglist.ParseFormat(req.Format)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.StatusResponse{Status: msgShoppingListSent})
}
