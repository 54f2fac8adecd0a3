// Package api exposes the search engine over HTTP using Gin.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/services"
)

// API holds dependencies for the HTTP handlers, primarily the engine.
type API struct {
	engine services.IndexManagerWithAsyncOps
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.IndexManagerWithAsyncOps) *API {
	return &API{engine: engine}
}

// SetupRoutes defines all the API routes for the search engine.
func SetupRoutes(router *gin.Engine, engine services.IndexManagerWithAsyncOps) {
	apiHandler := NewAPI(engine)

	router.GET("/health", apiHandler.HealthCheckHandler)

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		jobRoutes.POST("/:jobId/cancel", apiHandler.CancelJobHandler)
	}

	indexRoutes := router.Group("/indexes")
	{
		indexRoutes.POST("", apiHandler.CreateIndexHandler)
		indexRoutes.GET("", apiHandler.ListIndexesHandler)
		indexRoutes.GET("/:indexName", apiHandler.GetIndexHandler)
		indexRoutes.DELETE("/:indexName", apiHandler.DeleteIndexHandler)
		indexRoutes.PATCH("/:indexName/settings", apiHandler.UpdateIndexSettingsHandler)
		indexRoutes.POST("/:indexName/rename", apiHandler.RenameIndexHandler)
		indexRoutes.GET("/:indexName/stats", apiHandler.GetIndexStatsHandler)
		indexRoutes.POST("/:indexName/compact", apiHandler.CompactIndexHandler)
		indexRoutes.POST("/:indexName/reindex", apiHandler.ReindexHandler)
		indexRoutes.GET("/:indexName/jobs", apiHandler.ListJobsHandler)

		docRoutes := indexRoutes.Group("/:indexName/documents")
		{
			docRoutes.PUT("", apiHandler.AddDocumentsHandler)
			docRoutes.GET("", apiHandler.GetDocumentsHandler)
			docRoutes.DELETE("", apiHandler.DeleteAllDocumentsHandler)
			docRoutes.GET("/:documentId", apiHandler.GetDocumentHandler)
			docRoutes.DELETE("/:documentId", apiHandler.DeleteDocumentHandler)
		}

		indexRoutes.POST("/:indexName/_search", apiHandler.SearchHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "news-search-engine",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}
