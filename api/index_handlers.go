package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/internal/engine"
)

// CreateIndexHandler handles the request to create a new index.
// Request Body: config.IndexSettings
func (api *API) CreateIndexHandler(c *gin.Context) {
	var settings config.IndexSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateIndexName(settings.Name); result.HasErrors() {
		SendValidationErrors(c, result)
		return
	}

	if err := api.engine.CreateIndex(settings); err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Index '" + settings.Name + "' created successfully"})
}

// ListIndexesHandler lists all available indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	names := api.engine.ListIndexes()
	c.JSON(http.StatusOK, gin.H{"indexes": names, "count": len(names)})
}

// GetIndexHandler retrieves details about a specific index (its settings).
func (api *API) GetIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	settings, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// DeleteIndexHandler handles deleting an index.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	if err := api.engine.DeleteIndex(indexName); err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index '" + indexName + "' deleted successfully"})
}

// UpdateIndexSettingsHandler replaces an index's settings. A change to the
// analyzer configuration leaves existing postings untouched; the response notes
// when a reindex is required to clear the analyzer mismatch warning.
func (api *API) UpdateIndexSettingsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	current, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	var newSettings config.IndexSettings
	if err := c.ShouldBindJSON(&newSettings); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.UpdateIndexSettings(indexName, newSettings); err != nil {
		SendEngineError(c, err)
		return
	}

	updated, err := api.engine.GetIndexSettings(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	reindexRequired := updated.Analyzer.Fingerprint() != current.AnalyzerFingerprint

	c.JSON(http.StatusOK, gin.H{
		"message":          "Settings updated successfully for index '" + indexName + "'",
		"reindex_required": reindexRequired,
	})
}

// RenameIndexRequest defines the structure for renaming an index.
type RenameIndexRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// RenameIndexHandler handles requests to rename an index.
func (api *API) RenameIndexHandler(c *gin.Context) {
	oldName := c.Param("indexName")

	var req RenameIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if strings.TrimSpace(req.NewName) != req.NewName {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"new_name cannot have leading or trailing whitespace")
		return
	}

	if err := api.engine.RenameIndex(oldName, req.NewName); err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Index renamed successfully",
		"old_name": oldName,
		"new_name": req.NewName,
	})
}

// GetIndexStatsHandler returns size counters for a specific index.
func (api *API) GetIndexStatsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	concreteEngine, ok := api.engine.(*engine.Engine)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeInternalError, "Index stats not supported by this engine")
		return
	}
	stats, err := concreteEngine.GetIndexStats(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
