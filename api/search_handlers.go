package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/services"
)

// SearchRequest defines the JSON body of a search call.
type SearchRequest struct {
	Query     string   `json:"query"`
	Fields    []string `json:"fields,omitempty"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
	TimeoutMs int      `json:"timeout_ms,omitempty"`
}

// SearchHandler evaluates a Boolean query against an index.
func (api *API) SearchHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	searchQuery := services.SearchQuery{
		QueryString: req.Query,
		Fields:      req.Fields,
		Page:        req.Page,
		PageSize:    req.PageSize,
		TimeoutMs:   req.TimeoutMs,
	}

	results, err := indexAccessor.Search(c.Request.Context(), searchQuery)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			SendError(c, http.StatusGatewayTimeout, ErrorCodeSearchTimeout,
				"Search on index '"+indexName+"' exceeded its time budget")
			return
		}
		SendEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
