package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/newsearch/news-search-engine/internal/engine"
	"github.com/newsearch/news-search-engine/model"
)

// AddDocumentsHandler handles adding or replacing documents in an index.
// The body may be a single document object or an array of documents. Documents
// that fail validation are reported in the response; the rest of the batch is
// still indexed. Any failure turns the status into 422.
func (api *API) AddDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	var rawData interface{}
	if err := c.ShouldBindJSON(&rawData); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	var docs []model.Document
	switch data := rawData.(type) {
	case []interface{}:
		docs = make([]model.Document, len(data))
		for i, item := range data {
			docMap, isMap := item.(map[string]interface{})
			if !isMap {
				SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
					fmt.Sprintf("Document at index %d is not a valid object", i))
				return
			}
			docs[i] = model.Document(docMap)
		}
	case map[string]interface{}:
		docs = []model.Document{model.Document(data)}
	default:
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed,
			"Invalid request body. Expecting a document object or an array of documents")
		return
	}

	if len(docs) == 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "No documents provided")
		return
	}

	result, err := indexAccessor.AddDocuments(docs)
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeIndexingFailed,
			"Failed to add documents to index '"+indexName+"': "+err.Error())
		return
	}

	if err := api.engine.PersistIndexData(indexName); err != nil {
		SendInternalError(c, "persisting index data", err)
		return
	}

	status := http.StatusOK
	if result.Failed() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{
		"indexed_count":    result.IndexedCount,
		"failed_documents": result.FailedDocuments,
	})
}

// DocumentListRequest defines pagination parameters for document listing.
type DocumentListRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

const maxDocumentPageSize = 100

// GetDocumentsHandler lists documents in an index with pagination. Order
// follows internal document IDs, which is ingestion order for live documents.
func (api *API) GetDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	instance, err := api.getInstance(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	var req DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Invalid query parameters: "+err.Error())
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > maxDocumentPageSize {
		req.PageSize = maxDocumentPageSize
	}

	type storedDoc struct {
		internalID uint32
		doc        model.Document
	}
	var all []storedDoc
	instance.DocumentStore.Range(func(internalID uint32, doc model.Document) bool {
		all = append(all, storedDoc{internalID: internalID, doc: doc})
		return true
	})
	sort.Slice(all, func(a, b int) bool { return all[a].internalID < all[b].internalID })

	totalCount := len(all)
	startIndex := (req.Page - 1) * req.PageSize
	if startIndex > totalCount {
		startIndex = totalCount
	}
	endIndex := startIndex + req.PageSize
	if endIndex > totalCount {
		endIndex = totalCount
	}

	documents := []model.Document{}
	for _, sd := range all[startIndex:endIndex] {
		documents = append(documents, sd.doc)
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     totalCount,
		"page":      req.Page,
		"page_size": req.PageSize,
		"pages":     (totalCount + req.PageSize - 1) / req.PageSize,
	})
}

// GetDocumentHandler retrieves a specific document by its external ID.
func (api *API) GetDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	documentID := c.Param("documentId")

	instance, err := api.getInstance(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	doc, _, found := instance.DocumentStore.GetByExternalID(documentID)
	if !found {
		SendDocumentNotFoundError(c, documentID, indexName)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteDocumentHandler deletes a specific document by its external ID.
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	documentID := c.Param("documentId")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	if err := indexAccessor.DeleteDocument(documentID); err != nil {
		SendEngineError(c, err)
		return
	}
	if err := api.engine.PersistIndexData(indexName); err != nil {
		SendInternalError(c, "persisting index data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document '" + documentID + "' deleted from index '" + indexName + "'"})
}

// DeleteAllDocumentsHandler removes every document from an index.
func (api *API) DeleteAllDocumentsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		SendEngineError(c, err)
		return
	}

	if err := indexAccessor.DeleteAllDocuments(); err != nil {
		SendInternalError(c, "deleting documents", err)
		return
	}
	if err := api.engine.PersistIndexData(indexName); err != nil {
		SendInternalError(c, "persisting index data", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All documents deleted from index '" + indexName + "'"})
}

// getInstance resolves the concrete index instance for handlers that read the
// document store directly.
func (api *API) getInstance(indexName string) (*engine.IndexInstance, error) {
	accessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		return nil, err
	}
	instance, ok := accessor.(*engine.IndexInstance)
	if !ok {
		return nil, fmt.Errorf("index '%s' does not expose a document store", indexName)
	}
	return instance, nil
}
