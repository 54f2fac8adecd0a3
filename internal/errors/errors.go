package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrIndexNotFound is returned when an index is not found
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexAlreadyExists is returned when trying to create an index that already exists
	ErrIndexAlreadyExists = errors.New("index already exists")

	// ErrDocumentNotFound is returned when a document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrSyntax is returned when a query string is malformed
	ErrSyntax = errors.New("query syntax error")

	// ErrFieldNotIndexed is returned when a query references an undeclared field
	ErrFieldNotIndexed = errors.New("field not indexed")

	// ErrAnalyzerMismatch is returned when index-time and query-time analyzer
	// configurations diverge for an index
	ErrAnalyzerMismatch = errors.New("analyzer mismatch")

	// ErrDocumentValidation is returned when an ingested document is rejected
	ErrDocumentValidation = errors.New("document validation failed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrSameName is returned when trying to rename to the same name
	ErrSameName = errors.New("same name provided")
)

// IndexNotFoundError represents an index not found error with context
type IndexNotFoundError struct {
	IndexName string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index named '%s' not found", e.IndexName)
}

func (e *IndexNotFoundError) Is(target error) bool {
	return target == ErrIndexNotFound
}

// NewIndexNotFoundError creates a new IndexNotFoundError
func NewIndexNotFoundError(indexName string) *IndexNotFoundError {
	return &IndexNotFoundError{IndexName: indexName}
}

// IndexAlreadyExistsError represents an index already exists error with context
type IndexAlreadyExistsError struct {
	IndexName string
}

func (e *IndexAlreadyExistsError) Error() string {
	return fmt.Sprintf("index named '%s' already exists", e.IndexName)
}

func (e *IndexAlreadyExistsError) Is(target error) bool {
	return target == ErrIndexAlreadyExists
}

// NewIndexAlreadyExistsError creates a new IndexAlreadyExistsError
func NewIndexAlreadyExistsError(indexName string) *IndexAlreadyExistsError {
	return &IndexAlreadyExistsError{IndexName: indexName}
}

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID string
	IndexName  string
}

func (e *DocumentNotFoundError) Error() string {
	if e.IndexName != "" {
		return fmt.Sprintf("document with ID '%s' not found in index '%s'", e.DocumentID, e.IndexName)
	}
	return fmt.Sprintf("document with ID '%s' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID string, indexName ...string) *DocumentNotFoundError {
	err := &DocumentNotFoundError{DocumentID: documentID}
	if len(indexName) > 0 {
		err.IndexName = indexName[0]
	}
	return err
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// SyntaxError represents a malformed query string. Offset is the byte offset
// into the query string where parsing failed, surfaced verbatim to the caller.
type SyntaxError struct {
	Message string
	Offset  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Message)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NewSyntaxError creates a new SyntaxError
func NewSyntaxError(message string, offset int) *SyntaxError {
	return &SyntaxError{Message: message, Offset: offset}
}

// FieldNotIndexedError represents a query referencing a field that is not
// declared in the index settings. The query is aborted; partial results are
// never returned.
type FieldNotIndexedError struct {
	Field     string
	IndexName string
}

func (e *FieldNotIndexedError) Error() string {
	if e.IndexName != "" {
		return fmt.Sprintf("field '%s' is not indexed in index '%s'", e.Field, e.IndexName)
	}
	return fmt.Sprintf("field '%s' is not indexed", e.Field)
}

func (e *FieldNotIndexedError) Is(target error) bool {
	return target == ErrFieldNotIndexed
}

// NewFieldNotIndexedError creates a new FieldNotIndexedError
func NewFieldNotIndexedError(field string, indexName ...string) *FieldNotIndexedError {
	err := &FieldNotIndexedError{Field: field}
	if len(indexName) > 0 {
		err.IndexName = indexName[0]
	}
	return err
}

// AnalyzerMismatchError signals that the analyzer configuration used to build
// the index differs from the current settings. Results remain well-defined but
// precision-degraded, so this is surfaced as a warning alongside results, not
// as a query failure.
type AnalyzerMismatchError struct {
	IndexName          string
	IndexedFingerprint string
	CurrentFingerprint string
}

func (e *AnalyzerMismatchError) Error() string {
	return fmt.Sprintf("analyzer configuration for index '%s' changed since indexing (indexed: %q, current: %q); reindex to restore full precision",
		e.IndexName, e.IndexedFingerprint, e.CurrentFingerprint)
}

func (e *AnalyzerMismatchError) Is(target error) bool {
	return target == ErrAnalyzerMismatch
}

// NewAnalyzerMismatchError creates a new AnalyzerMismatchError
func NewAnalyzerMismatchError(indexName, indexed, current string) *AnalyzerMismatchError {
	return &AnalyzerMismatchError{IndexName: indexName, IndexedFingerprint: indexed, CurrentFingerprint: current}
}

// DocumentValidationError represents a rejected document during ingest
// (missing identifier, undeclared field, malformed field value). Batch
// ingestion continues with the remaining documents; failed document IDs are
// collected and reported, never silently dropped.
type DocumentValidationError struct {
	DocumentID string
	Field      string
	Message    string
}

func (e *DocumentValidationError) Error() string {
	id := e.DocumentID
	if id == "" {
		id = "<unknown>"
	}
	if e.Field != "" {
		return fmt.Sprintf("document '%s' rejected: field '%s': %s", id, e.Field, e.Message)
	}
	return fmt.Sprintf("document '%s' rejected: %s", id, e.Message)
}

func (e *DocumentValidationError) Is(target error) bool {
	return target == ErrDocumentValidation
}

// NewDocumentValidationError creates a new DocumentValidationError
func NewDocumentValidationError(documentID, field, message string) *DocumentValidationError {
	return &DocumentValidationError{DocumentID: documentID, Field: field, Message: message}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SameNameError represents an error when trying to rename to the same name
type SameNameError struct {
	Name string
}

func (e *SameNameError) Error() string {
	return fmt.Sprintf("new name '%s' is the same as the current name", e.Name)
}

func (e *SameNameError) Is(target error) bool {
	return target == ErrSameName
}

// NewSameNameError creates a new SameNameError
func NewSameNameError(name string) *SameNameError {
	return &SameNameError{Name: name}
}
