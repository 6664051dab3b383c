package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/pkg/response"
	"github.com/xxxsen/atomdocs/internal/service"
)

type PageHandler struct {
	content *service.ContentService
}

func NewPageHandler(content *service.ContentService) *PageHandler {
	return &PageHandler{content: content}
}

func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.content.ListPages(c.Request.Context(), service.PageFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Slug:     c.Query("slug"),
	})
	if err != nil {
		handleError(c, err, "failed to list pages")
		return
	}
	response.Success(c, pages)
}

func (h *PageHandler) Save(c *gin.Context) {
	var req model.Page
	if !bindJSON(c, plainError, &req) {
		return
	}
	page, err := h.content.SavePage(c.Request.Context(), req)
	if err != nil {
		handlePlainError(c, err, "Failed to save page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "page": page})
}

func (h *PageHandler) Delete(c *gin.Context) {
	if err := h.content.DeletePage(c.Request.Context(), c.Param("id")); err != nil {
		handlePlainError(c, err, "Failed to delete page")
		return
	}
	c.JSON(http.StatusOK, successAck)
}

func (h *PageHandler) Reorder(c *gin.Context) {
	var req []model.Page
	if !bindJSON(c, envelopeError, &req) {
		return
	}
	if err := h.content.ReorderPages(c.Request.Context(), req); err != nil {
		handleError(c, err, "failed to update page order")
		return
	}
	response.Success(c, successAck)
}
