package services

import (
	"context"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/model"
)

// HitResult represents a single document in the search results.
type HitResult struct {
	DocumentID string         `json:"document_id"`
	Document   model.Document `json:"document"`
	Score      float64        `json:"score"` // term-frequency sum across matched fields
}

// SearchResult is the outcome of one query evaluation. An empty Hits slice is
// a valid, non-error outcome.
type SearchResult struct {
	Hits     []HitResult `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Took     int64       `json:"took"`     // milliseconds
	QueryId  string      `json:"query_id"` // unique UUID for this search query
	Warnings []string    `json:"warnings,omitempty"`
}

// SearchQuery describes one search call. Fields restricts the query to a
// subset of declared fields; empty means all text fields. TimeoutMs bounds the
// whole evaluation, not individual term lookups.
type SearchQuery struct {
	QueryString string   `json:"query"`
	Fields      []string `json:"fields,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
	TimeoutMs   int      `json:"timeout_ms,omitempty"`
}

// Indexer defines operations for adding data to an index
type Indexer interface {
	AddDocuments(docs []model.Document) (model.BatchResult, error)
	DeleteAllDocuments() error
	DeleteDocument(docID string) error
}

// Searcher defines operations for querying an index
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// Maintainer defines background maintenance operations on an index
type Maintainer interface {
	Compact(ctx context.Context) error
	Reindex(ctx context.Context) error
}

// IndexManager manages the lifecycle of indices
type IndexManager interface {
	CreateIndex(settings config.IndexSettings) error
	GetIndex(name string) (IndexAccessor, error)
	GetIndexSettings(name string) (config.IndexSettings, error)
	UpdateIndexSettings(name string, settings config.IndexSettings) error
	RenameIndex(oldName, newName string) error
	DeleteIndex(name string) error
	ListIndexes() []string
	PersistIndexData(indexName string) error
}

// IndexManagerWithAsyncOps extends IndexManager with background maintenance:
// compaction and full reindexing run as jobs that never block foreground reads.
type IndexManagerWithAsyncOps interface {
	IndexManager
	StartCompaction(indexName string) (string, error) // Returns job ID
	StartReindex(indexName string) (string, error)    // Returns job ID
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(indexName string, status *model.JobStatus) []*model.Job
}

// IndexAccessor bundles everything a caller can do with one index.
type IndexAccessor interface {
	Indexer
	Searcher
	Maintainer
	Settings() config.IndexSettings
}
