package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Data       *DataHandler
	Pages      *PageHandler
	Categories *CategoryHandler
	Site       *SiteHandler
}

// RegisterRoutes mounts the content API. None of the routes are
// authenticated. /data, /initial-data and the page and category writes
// reply with bare JSON bodies; the listing and site routes use the
// {code, message, data} envelope.
func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/data", deps.Data.Get)
	api.POST("/data", deps.Data.Replace)
	api.GET("/initial-data", deps.Data.InitialData)

	api.GET("/pages", deps.Pages.List)
	api.POST("/pages", deps.Pages.Save)
	api.PUT("/pages/order", deps.Pages.Reorder)
	api.DELETE("/pages/:id", deps.Pages.Delete)

	api.GET("/categories", deps.Categories.List)
	api.POST("/categories", deps.Categories.Save)
	api.PUT("/categories/order", deps.Categories.Reorder)
	api.DELETE("/categories/:id", deps.Categories.Delete)

	api.GET("/properties", deps.Site.Properties)
	api.GET("/overview", deps.Site.Overview)
	api.GET("/search", deps.Site.Search)
}

