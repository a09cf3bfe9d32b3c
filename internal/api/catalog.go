package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves the read-only tag and ingredient dictionaries
type CatalogHandler struct {
	tagService        service.ITagService
	ingredientService service.IIngredientService
}

func NewCatalogHandler(tagService service.ITagService, ingredientService service.IIngredientService) *CatalogHandler {
	return &CatalogHandler{tagService: tagService, ingredientService: ingredientService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags/", h.ListTags)
	router.GET("/tags/:id/", h.GetTag)
	router.GET("/ingredients/", h.SearchIngredients)
	router.GET("/ingredients/:id/", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]types.TagResponse, 0, len(tags))
	for i := range tags {
		resp = append(resp, tagResponse(&tags[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	tag, err := h.tagService.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tagResponse(tag))
}

// SearchIngredients matches ?name= as a prefix, falling back to fuzzy matching
func (h *CatalogHandler) SearchIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.SearchIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]types.IngredientResponse, 0, len(ingredients))
	for i := range ingredients {
		resp = append(resp, ingredientResponse(&ingredients[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	ingredient, err := h.ingredientService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredientResponse(ingredient))
}
