package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/atomdocs/internal/model"
	"github.com/xxxsen/atomdocs/internal/service"
)

// DataHandler serves the whole site as a bare {pages, categories} body,
// the shape the browser client reads directly.
type DataHandler struct {
	content *service.ContentService
}

func NewDataHandler(content *service.ContentService) *DataHandler {
	return &DataHandler{content: content}
}

func (h *DataHandler) Get(c *gin.Context) {
	data, err := h.content.Read(c.Request.Context())
	if err != nil {
		handlePlainError(c, err, "Failed to fetch data")
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *DataHandler) Replace(c *gin.Context) {
	var req model.SiteData
	if !bindJSON(c, plainError, &req) {
		return
	}
	if err := h.content.Write(c.Request.Context(), &req); err != nil {
		handlePlainError(c, err, "Failed to save data")
		return
	}
	c.JSON(http.StatusOK, successAck)
}

// InitialData always succeeds; an unusable seed file reads as empty.
func (h *DataHandler) InitialData(c *gin.Context) {
	c.JSON(http.StatusOK, h.content.InitialData(c.Request.Context()))
}
