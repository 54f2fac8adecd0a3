package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ValidationIssue describes one rejected request field.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult collects request validation failures.
type ValidationResult struct {
	Issues []ValidationIssue
}

// AddError records a validation failure.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{Field: field, Message: message})
}

// HasErrors reports whether any validation failure was recorded.
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Issues) > 0
}

// ValidateIndexName validates an index name from a request.
func ValidateIndexName(indexName string) *ValidationResult {
	result := &ValidationResult{}

	if indexName == "" {
		result.AddError("name", "Index name is required")
		return result
	}
	if strings.TrimSpace(indexName) != indexName {
		result.AddError("name", "Index name cannot have leading or trailing whitespace")
	}
	return result
}

// SendValidationErrors sends a 400 with the collected validation issues.
func SendValidationErrors(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, len(result.Issues))
	for i, issue := range result.Issues {
		details[i] = ErrorDetail{Field: issue.Field, Message: issue.Message}
	}
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}
