package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
)

// ErrorCode represents standardized error codes for the API.
type ErrorCode string

const (
	// Client error codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeIndexNotFound    ErrorCode = "INDEX_NOT_FOUND"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
	ErrorCodeIndexExists      ErrorCode = "INDEX_ALREADY_EXISTS"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeQuerySyntax      ErrorCode = "QUERY_SYNTAX_ERROR"
	ErrorCodeFieldNotIndexed  ErrorCode = "FIELD_NOT_INDEXED"
	ErrorCodeSameName         ErrorCode = "SAME_NAME_PROVIDED"

	// Server error codes (5xx)
	ErrorCodeInternalError  ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexingFailed ErrorCode = "INDEXING_FAILED"
	ErrorCodeSearchFailed   ErrorCode = "SEARCH_FAILED"
	ErrorCodeSearchTimeout  ErrorCode = "SEARCH_TIMEOUT"
	ErrorCodeJobFailed      ErrorCode = "JOB_EXECUTION_FAILED"
)

// ErrorDetail provides additional context for an error, such as the field a
// validation failure refers to or the byte offset of a query syntax error.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Offset  *int   `json:"offset,omitempty"`
	Message string `json:"message"`
}

// APIError represents a standardized API error response.
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// SendError sends a standardized error response.
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	c.JSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// SendIndexNotFoundError sends a standardized index not found error.
func SendIndexNotFoundError(c *gin.Context, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound,
		"Index '"+indexName+"' not found")
}

// SendDocumentNotFoundError sends a standardized document not found error.
func SendDocumentNotFoundError(c *gin.Context, documentID, indexName string) {
	SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound,
		"Document '"+documentID+"' not found in index '"+indexName+"'")
}

// SendInvalidJSONError sends a standardized invalid JSON error.
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error.
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendEngineError maps errors returned by the engine to HTTP responses. The
// mapping inspects sentinel and typed errors rather than message text.
func SendEngineError(c *gin.Context, err error) {
	var syntaxErr *internalErrors.SyntaxError
	var fieldErr *internalErrors.FieldNotIndexedError
	var validationErr *internalErrors.ValidationError

	switch {
	case errors.As(err, &syntaxErr):
		offset := syntaxErr.Offset
		SendError(c, http.StatusBadRequest, ErrorCodeQuerySyntax, "Query syntax error",
			ErrorDetail{Offset: &offset, Message: syntaxErr.Message})
	case errors.As(err, &fieldErr):
		SendError(c, http.StatusBadRequest, ErrorCodeFieldNotIndexed, err.Error(),
			ErrorDetail{Field: fieldErr.Field, Message: "field is not declared in the index mapping"})
	case errors.As(err, &validationErr):
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error(),
			ErrorDetail{Field: validationErr.Field, Message: validationErr.Message})
	case errors.Is(err, internalErrors.ErrIndexNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeIndexNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrDocumentNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrJobNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeJobNotFound, err.Error())
	case errors.Is(err, internalErrors.ErrIndexAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeIndexExists, err.Error())
	case errors.Is(err, internalErrors.ErrSameName):
		SendError(c, http.StatusBadRequest, ErrorCodeSameName, err.Error())
	default:
		SendInternalError(c, "request", err)
	}
}
