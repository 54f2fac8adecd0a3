package engine

import (
	"context"
	"fmt"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	"github.com/newsearch/news-search-engine/internal/indexing"
	"github.com/newsearch/news-search-engine/internal/search"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/services"
	"github.com/newsearch/news-search-engine/store"
)

// IndexInstance holds all components and services for a single search index.
// It implements the services.IndexAccessor interface.
type IndexInstance struct {
	settings      *config.IndexSettings
	InvertedIndex *index.InvertedIndex
	DocumentStore *store.DocumentStore
	indexer       *indexing.Service
	searcher      *search.Service
}

// NewIndexInstance creates and initializes a new IndexInstance.
func NewIndexInstance(settings config.IndexSettings) (*IndexInstance, error) {
	if settings.Name == "" {
		return nil, fmt.Errorf("index name cannot be empty in settings")
	}

	settingsCopy := settings
	docStore := store.NewDocumentStore()
	invIndex := index.NewInvertedIndex(&settingsCopy)

	instance := &IndexInstance{
		settings:      &settingsCopy,
		InvertedIndex: invIndex,
		DocumentStore: docStore,
	}
	if err := instance.rebuildServices(); err != nil {
		return nil, err
	}
	return instance, nil
}

// newIndexInstanceFromLoaded wires services around structures decoded from disk.
func newIndexInstanceFromLoaded(settings *config.IndexSettings, invIndex *index.InvertedIndex, docStore *store.DocumentStore) (*IndexInstance, error) {
	instance := &IndexInstance{
		settings:      settings,
		InvertedIndex: invIndex,
		DocumentStore: docStore,
	}
	if err := instance.rebuildServices(); err != nil {
		return nil, err
	}
	return instance, nil
}

// rebuildServices (re)creates the indexing and search services from the
// current settings. Called at construction and after settings updates, since
// both services hold an analyzer built from the settings.
func (i *IndexInstance) rebuildServices() error {
	indexerService, err := indexing.NewService(i.InvertedIndex, i.DocumentStore)
	if err != nil {
		return fmt.Errorf("failed to create indexer service: %w", err)
	}
	searchService, err := search.NewService(i.InvertedIndex, i.DocumentStore, i.settings)
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}
	i.indexer = indexerService
	i.searcher = searchService
	return nil
}

// AddDocuments delegates to the underlying Indexer service.
func (i *IndexInstance) AddDocuments(docs []model.Document) (model.BatchResult, error) {
	if i.indexer == nil {
		return model.BatchResult{}, fmt.Errorf("indexer service not initialized for index '%s'", i.settings.Name)
	}
	return i.indexer.AddDocuments(docs)
}

// DeleteAllDocuments delegates to the underlying Indexer service.
func (i *IndexInstance) DeleteAllDocuments() error {
	if i.indexer == nil {
		return fmt.Errorf("indexer service not initialized for index '%s'", i.settings.Name)
	}
	return i.indexer.DeleteAllDocuments()
}

// DeleteDocument delegates to the underlying Indexer service.
func (i *IndexInstance) DeleteDocument(docID string) error {
	if i.indexer == nil {
		return fmt.Errorf("indexer service not initialized for index '%s'", i.settings.Name)
	}
	return i.indexer.DeleteDocument(docID)
}

// Search delegates to the underlying Searcher service.
func (i *IndexInstance) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	if i.searcher == nil {
		return services.SearchResult{}, fmt.Errorf("search service not initialized for index '%s'", i.settings.Name)
	}
	return i.searcher.Search(ctx, query)
}

// Compact delegates posting-list compaction to the indexer service.
func (i *IndexInstance) Compact(ctx context.Context) error {
	if i.indexer == nil {
		return fmt.Errorf("indexer service not initialized for index '%s'", i.settings.Name)
	}
	return i.indexer.Compact(ctx)
}

// Reindex rebuilds postings from stored documents with the current analyzer
// configuration, then refreshes the captured fingerprint.
func (i *IndexInstance) Reindex(ctx context.Context) error {
	if i.indexer == nil {
		return fmt.Errorf("indexer service not initialized for index '%s'", i.settings.Name)
	}
	if err := i.indexer.Reindex(ctx); err != nil {
		return err
	}
	i.settings.AnalyzerFingerprint = i.settings.Analyzer.Fingerprint()
	return nil
}

// Settings returns a copy of the instance's settings.
func (i *IndexInstance) Settings() config.IndexSettings {
	return *i.settings
}

// Stats summarizes the index for the stats endpoint.
type Stats struct {
	Name           string `json:"name"`
	DocumentCount  int    `json:"document_count"`
	TermCount      int    `json:"term_count"`
	TombstoneCount int    `json:"tombstone_count"`
}

// Stats returns current size counters for the index.
func (i *IndexInstance) Stats() Stats {
	return Stats{
		Name:           i.settings.Name,
		DocumentCount:  i.DocumentStore.Count(),
		TermCount:      i.InvertedIndex.TermCount(),
		TombstoneCount: i.InvertedIndex.TombstoneCount(),
	}
}
