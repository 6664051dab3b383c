package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/atomdocs/internal/pkg/response"
	"github.com/xxxsen/atomdocs/internal/service"
)

type SiteHandler struct {
	content *service.ContentService
}

func NewSiteHandler(content *service.ContentService) *SiteHandler {
	return &SiteHandler{content: content}
}

// Properties exposes the display flags. edit_mode only tells the UI to show
// admin controls.
func (h *SiteHandler) Properties(c *gin.Context) {
	site := h.content.Site()
	response.Success(c, gin.H{"title": site.Title, "edit_mode": site.EditMode})
}

func (h *SiteHandler) Overview(c *gin.Context) {
	overview, err := h.content.Overview(c.Request.Context())
	if err != nil {
		handleError(c, err, "failed to load overview")
		return
	}
	response.Success(c, overview)
}

func (h *SiteHandler) Search(c *gin.Context) {
	limit := 0
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	results, err := h.content.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		handleError(c, err, "failed to search")
		return
	}
	response.Success(c, results)
}
