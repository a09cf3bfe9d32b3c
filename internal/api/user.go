package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves profiles, avatars and subscriptions
type UserHandler struct {
	userService service.IUserService
	validator   middleware.TokenValidator
}

func NewUserHandler(userService service.IUserService, validator middleware.TokenValidator) *UserHandler {
	return &UserHandler{userService: userService, validator: validator}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	authed := middleware.AuthMiddleware(h.validator)
	{
		users.GET("/me/", authed, h.Me)
		users.PUT("/me/avatar/", authed, h.SetAvatar)
		users.DELETE("/me/avatar/", authed, h.DeleteAvatar)
		users.GET("/subscriptions/", authed, h.Subscriptions)
		users.GET("/:id/", middleware.OptionalAuth(h.validator), h.GetUser)
		users.POST("/:id/subscribe/", authed, h.Subscribe)
		users.DELETE("/:id/subscribe/", authed, h.Unsubscribe)
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	subscribed, err := h.userService.IsSubscribed(ctx, middleware.UserID(c), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user, subscribed))
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	url, err := h.userService.SetAvatar(c.Request.Context(), middleware.UserID(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.AvatarResponse{Avatar: url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.userService.DeleteAvatar(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	ctx := c.Request.Context()
	authors, err := h.userService.Subscriptions(ctx, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	limit := intQuery(c, "recipes_limit")
	resp := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		recipes, total, err := h.userService.AuthorRecipes(ctx, authors[i].ID, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		resp = append(resp, subscriptionResponse(&authors[i], recipes, total))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	author, err := h.userService.Subscribe(ctx, middleware.UserID(c), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	recipes, total, err := h.userService.AuthorRecipes(ctx, author.ID, intQuery(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscriptionResponse(author, recipes, total))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
