package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ShortLinkHandler redirects /r/<code>/ to the recipe page
type ShortLinkHandler struct {
	shortLinkService service.IShortLinkService
}

func NewShortLinkHandler(shortLinkService service.IShortLinkService) *ShortLinkHandler {
	return &ShortLinkHandler{shortLinkService: shortLinkService}
}

func (h *ShortLinkHandler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/r/:code/", h.Redirect)
}

func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	id, err := h.shortLinkService.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		metrics.ShortLinkResolutions.WithLabelValues("miss").Inc()
		respondError(c, err)
		return
	}
	metrics.ShortLinkResolutions.WithLabelValues("hit").Inc()
	c.Redirect(http.StatusFound, fmt.Sprintf("/recipes/%d/", id))
}
