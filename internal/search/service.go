// Package search implements query parsing, Boolean evaluation, scoring, and
// result assembly for a single index.
package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	"github.com/newsearch/news-search-engine/internal/analysis"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/internal/query"
	"github.com/newsearch/news-search-engine/services"
	"github.com/newsearch/news-search-engine/store"
)

const defaultPageSize = 10

// Service implements the search logic for a single index.
// It fulfills the services.Searcher interface.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	settings      *config.IndexSettings
	analyzer      *analysis.Analyzer
}

// NewService creates a new search Service. The analyzer is built from the same
// settings the indexing service uses, keeping index-time and query-time
// analysis identical.
func NewService(invIndex *index.InvertedIndex, docStore *store.DocumentStore, settings *config.IndexSettings) (*Service, error) {
	if invIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if docStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	analyzer, err := analysis.NewAnalyzer(settings.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}

	return &Service{
		invertedIndex: invIndex,
		documentStore: docStore,
		settings:      settings,
		analyzer:      analyzer,
	}, nil
}

// Search parses the query string, evaluates the expression tree against the
// inverted index, and returns hits ordered by descending score with ties
// broken by ascending document ID. Evaluation is read-only and honors the
// context deadline for the call as a whole.
func (s *Service) Search(ctx context.Context, searchQuery services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()
	queryID := uuid.New().String()

	page := searchQuery.Page
	if page <= 0 {
		page = 1
	}
	pageSize := searchQuery.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	empty := services.SearchResult{
		Hits:     []services.HitResult{},
		Page:     page,
		PageSize: pageSize,
		QueryId:  queryID,
	}

	if searchQuery.QueryString == "" {
		empty.Took = time.Since(startTime).Milliseconds()
		return empty, nil
	}

	if searchQuery.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(searchQuery.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	fields, err := s.resolveFields(searchQuery.Fields)
	if err != nil {
		return services.SearchResult{}, err
	}

	tree, err := query.Parse(searchQuery.QueryString)
	if err != nil {
		return services.SearchResult{}, err
	}

	var warnings []string
	if warning := s.analyzerMismatch(); warning != nil {
		log.Printf("Warning: %v", warning)
		warnings = append(warnings, warning.Error())
	}

	eval := &evaluator{
		ctx:      ctx,
		index:    s.invertedIndex,
		analyzer: s.analyzer,
		settings: s.settings,
		fields:   fields,
	}
	matched, err := eval.eval(tree)
	if err != nil {
		return services.SearchResult{}, fmt.Errorf("query evaluation failed: %w", err)
	}

	hits := s.assembleHits(matched)

	total := len(hits)
	startIdx := (page - 1) * pageSize
	if startIdx > total {
		startIdx = total
	}
	endIdx := startIdx + pageSize
	if endIdx > total {
		endIdx = total
	}

	return services.SearchResult{
		Hits:     hits[startIdx:endIdx],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Took:     time.Since(startTime).Milliseconds(),
		QueryId:  queryID,
		Warnings: warnings,
	}, nil
}

// resolveFields validates the requested fields against the declared mappings.
// An undeclared field aborts the query with a FieldNotIndexedError; partial
// results are never returned. An empty request means all text fields.
func (s *Service) resolveFields(requested []string) ([]string, error) {
	if len(requested) == 0 {
		fields := s.settings.TextFields()
		if len(fields) == 0 {
			return nil, fmt.Errorf("index '%s' declares no text fields and the query restricts none", s.settings.Name)
		}
		return fields, nil
	}

	for _, field := range requested {
		if _, declared := s.settings.FieldType(field); !declared {
			return nil, internalErrors.NewFieldNotIndexedError(field, s.settings.Name)
		}
	}
	return requested, nil
}

// analyzerMismatch compares the fingerprint captured when the index was built
// against the current analyzer configuration. A divergence degrades precision
// but results stay well-defined, so it surfaces as a warning, not a failure.
func (s *Service) analyzerMismatch() *internalErrors.AnalyzerMismatchError {
	indexed := s.settings.AnalyzerFingerprint
	current := s.settings.Analyzer.Fingerprint()
	if indexed == "" || indexed == current {
		return nil
	}
	return internalErrors.NewAnalyzerMismatchError(s.settings.Name, indexed, current)
}

// assembleHits maps internal IDs back to stored documents and orders them:
// descending score, then ascending external document ID for determinism.
func (s *Service) assembleHits(matched docSet) []services.HitResult {
	hits := make([]services.HitResult, 0, len(matched))
	for _, sd := range matched {
		doc, ok := s.documentStore.Get(sd.docID)
		if !ok {
			// Deleted between evaluation and assembly; postings were
			// tombstoned but this read raced the delete. Skip it.
			continue
		}
		externalID, _ := doc.GetID()
		hits = append(hits, services.HitResult{
			DocumentID: externalID,
			Document:   doc,
			Score:      sd.score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	return hits
}
