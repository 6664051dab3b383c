package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/pkg/response"
	"github.com/xxxsen/atomdocs/internal/service"
)

type CategoryHandler struct {
	content *service.ContentService
}

func NewCategoryHandler(content *service.ContentService) *CategoryHandler {
	return &CategoryHandler{content: content}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.content.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err, "failed to list categories")
		return
	}
	response.Success(c, categories)
}

func (h *CategoryHandler) Save(c *gin.Context) {
	var req model.Category
	if !bindJSON(c, plainError, &req) {
		return
	}
	category, err := h.content.SaveCategory(c.Request.Context(), req)
	if err != nil {
		handlePlainError(c, err, "Failed to save category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.content.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		handlePlainError(c, err, "Failed to delete category")
		return
	}
	c.JSON(http.StatusOK, successAck)
}

func (h *CategoryHandler) Reorder(c *gin.Context) {
	var req []model.Category
	if !bindJSON(c, envelopeError, &req) {
		return
	}
	if err := h.content.ReorderCategories(c.Request.Context(), req); err != nil {
		handleError(c, err, "failed to update category order")
		return
	}
	response.Success(c, successAck)
}
