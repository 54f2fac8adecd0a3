package search

import (
	"context"
	"errors"
	"testing"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/internal/indexing"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/services"
	"github.com/newsearch/news-search-engine/store"
)

// newTestIndex builds an index, ingests docs, and returns the search service
// plus the settings pointer for tests that tweak the analyzer fingerprint.
func newTestIndex(t *testing.T, docs []model.Document) (*Service, *config.IndexSettings) {
	t.Helper()
	settings := &config.IndexSettings{Name: "news", Fields: config.DefaultNewsFields()}
	settings.ApplyDefaults()
	settings.AnalyzerFingerprint = settings.Analyzer.Fingerprint()

	invIndex := index.NewInvertedIndex(settings)
	docStore := store.NewDocumentStore()

	indexer, err := indexing.NewService(invIndex, docStore)
	if err != nil {
		t.Fatalf("indexing.NewService: %v", err)
	}
	result, err := indexer.AddDocuments(docs)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if result.Failed() {
		t.Fatalf("test documents rejected: %+v", result.FailedDocuments)
	}

	searcher, err := NewService(invIndex, docStore, settings)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return searcher, settings
}

func newsDocs() []model.Document {
	return []model.Document{
		{"uuid": "doc1", "title": "Machine learning improves"},
		{"uuid": "doc2", "title": "Deep learning declines"},
		{"uuid": "doc3", "title": "Learning machine"},
	}
}

func search(t *testing.T, s *Service, q services.SearchQuery) services.SearchResult {
	t.Helper()
	result, err := s.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search(%q): %v", q.QueryString, err)
	}
	return result
}

func hitIDs(result services.SearchResult) []string {
	ids := make([]string, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.DocumentID
	}
	return ids
}

func TestBooleanQueries(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"single term matches stemmed forms", "learning", []string{"doc1", "doc2", "doc3"}},
		{"AND narrows", "machine AND improves", []string{"doc1"}},
		{"implicit AND behaves like AND", "machine improves", []string{"doc1"}},
		{"OR widens", "machine OR deep", []string{"doc1", "doc2", "doc3"}},
		{"AND NOT excludes", "learning AND NOT declines", []string{"doc1", "doc3"}},
		{"NOT alone complements the universe", "NOT declines", []string{"doc1", "doc3"}},
		{"contradiction is empty", "learning AND NOT learning", nil},
		{"tautology is the universe", "learning OR NOT learning", []string{"doc1", "doc2", "doc3"}},
		{"grouping changes the result", "(machine OR deep) AND declines", []string{"doc2"}},
		{"no match", "nonexistent", nil},
		{"stopword-only query matches nothing", "the", nil},
		{"query words are analyzed like documents", "IMPROVES", []string{"doc1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := search(t, searcher, services.SearchQuery{QueryString: tt.query})
			got := hitIDs(result)
			if len(got) == 0 {
				got = nil
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("hits = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("hits = %v, want %v", got, tt.wantIDs)
				}
			}
			if result.Total != len(tt.wantIDs) {
				t.Errorf("Total = %d, want %d", result.Total, len(tt.wantIDs))
			}
		})
	}
}

func TestPhraseRequiresAdjacencyAndOrder(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	// doc1 has "machine learning", doc3 has the reversed "learning machine".
	result := search(t, searcher, services.SearchQuery{QueryString: `"machine learning"`})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf(`"machine learning" hits = %v, want [doc1]`, got)
	}

	result = search(t, searcher, services.SearchQuery{QueryString: `"learning machine"`})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc3" {
		t.Errorf(`"learning machine" hits = %v, want [doc3]`, got)
	}
}

func TestPhraseSkipsStopwordsLikeIndexing(t *testing.T) {
	searcher, _ := newTestIndex(t, []model.Document{
		{"uuid": "doc1", "title": "bread and butter"},
	})

	// "and" is dropped on both sides, so the phrase aligns on surviving terms.
	result := search(t, searcher, services.SearchQuery{QueryString: `"bread and butter"`})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("hits = %v, want [doc1]", got)
	}
	result = search(t, searcher, services.SearchQuery{QueryString: `"bread butter"`})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("hits without stopword = %v, want [doc1]", got)
	}
}

func TestScoreIsTermFrequencyOrderedDescThenID(t *testing.T) {
	searcher, _ := newTestIndex(t, []model.Document{
		{"uuid": "doc-b", "title": "learning"},
		{"uuid": "doc-a", "title": "learning"},
		{"uuid": "doc-c", "title": "learning learning learning", "text": "learning again"},
	})

	result := search(t, searcher, services.SearchQuery{QueryString: "learning"})
	got := hitIDs(result)
	// doc-c scores 4 (three in title, one in text); doc-a and doc-b tie at 1
	// and fall back to ascending external ID.
	want := []string{"doc-c", "doc-a", "doc-b"}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("hits = %v, want %v", got, want)
	}
	if result.Hits[0].Score != 4 {
		t.Errorf("top score = %v, want 4", result.Hits[0].Score)
	}
}

func TestFieldRestriction(t *testing.T) {
	searcher, _ := newTestIndex(t, []model.Document{
		{"uuid": "doc1", "title": "economy rallies", "text": "sports roundup"},
		{"uuid": "doc2", "title": "sports digest", "text": "economy slows"},
	})

	result := search(t, searcher, services.SearchQuery{QueryString: "economy", Fields: []string{"title"}})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("title-only hits = %v, want [doc1]", got)
	}

	// Default (no restriction) searches all text fields.
	result = search(t, searcher, services.SearchQuery{QueryString: "economy"})
	if got := hitIDs(result); len(got) != 2 {
		t.Errorf("unrestricted hits = %v, want both docs", got)
	}
}

func TestUndeclaredFieldAbortsQuery(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	_, err := searcher.Search(context.Background(), services.SearchQuery{
		QueryString: "learning",
		Fields:      []string{"title", "body"},
	})
	if !errors.Is(err, internalErrors.ErrFieldNotIndexed) {
		t.Fatalf("err = %v, want ErrFieldNotIndexed", err)
	}
	var fieldErr *internalErrors.FieldNotIndexedError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "body" {
		t.Errorf("err = %v, want FieldNotIndexedError for 'body'", err)
	}
}

func TestKeywordFieldMatchesVerbatim(t *testing.T) {
	searcher, _ := newTestIndex(t, []model.Document{
		{"uuid": "doc1", "title": "ignored", "author": "Jane Roe", "sentiment": "positive"},
		{"uuid": "doc2", "title": "ignored", "author": "John Doe", "sentiment": "negative"},
	})

	result := search(t, searcher, services.SearchQuery{QueryString: "positive", Fields: []string{"sentiment"}})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("sentiment hits = %v, want [doc1]", got)
	}

	// A multi-word keyword value needs phrase quoting to survive the lexer.
	result = search(t, searcher, services.SearchQuery{QueryString: `"Jane Roe"`, Fields: []string{"author"}})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("author hits = %v, want [doc1]", got)
	}

	// Keyword matching is exact, not normalized.
	result = search(t, searcher, services.SearchQuery{QueryString: `"jane roe"`, Fields: []string{"author"}})
	if got := hitIDs(result); len(got) != 0 {
		t.Errorf("lowercased author hits = %v, want none", got)
	}
}

func TestDateFieldMatchesCanonicalInstant(t *testing.T) {
	searcher, _ := newTestIndex(t, []model.Document{
		{"uuid": "doc1", "title": "ignored", "published": "2024-01-15T10:00:00Z"},
	})

	// Any spelling of the same instant matches.
	result := search(t, searcher, services.SearchQuery{QueryString: "1705312800000", Fields: []string{"published"}})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("epoch-millis query hits = %v, want [doc1]", got)
	}
	result = search(t, searcher, services.SearchQuery{QueryString: `"2024-01-15T10:00:00Z"`, Fields: []string{"published"}})
	if got := hitIDs(result); len(got) != 1 || got[0] != "doc1" {
		t.Errorf("RFC3339 query hits = %v, want [doc1]", got)
	}

	// A different instant of the same day does not match.
	result = search(t, searcher, services.SearchQuery{QueryString: "2024-01-15", Fields: []string{"published"}})
	if got := hitIDs(result); len(got) != 0 {
		t.Errorf("midnight query hits = %v, want none", got)
	}
}

func TestEmptyQueryReturnsEmptyResult(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	result := search(t, searcher, services.SearchQuery{QueryString: ""})
	if result.Total != 0 || len(result.Hits) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
	if result.QueryId == "" {
		t.Error("empty result should still carry a query ID")
	}
}

func TestSyntaxErrorPropagates(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	_, err := searcher.Search(context.Background(), services.SearchQuery{QueryString: `"unterminated`})
	if !errors.Is(err, internalErrors.ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func TestCancelledContextAbortsEvaluation(t *testing.T) {
	searcher, _ := newTestIndex(t, newsDocs())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := searcher.Search(ctx, services.SearchQuery{QueryString: "learning"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPaging(t *testing.T) {
	docs := []model.Document{
		{"uuid": "doc1", "title": "learning a"},
		{"uuid": "doc2", "title": "learning b"},
		{"uuid": "doc3", "title": "learning c"},
	}
	searcher, _ := newTestIndex(t, docs)

	page1 := search(t, searcher, services.SearchQuery{QueryString: "learning", Page: 1, PageSize: 2})
	if got := hitIDs(page1); len(got) != 2 || got[0] != "doc1" || got[1] != "doc2" {
		t.Errorf("page 1 = %v, want [doc1 doc2]", got)
	}
	if page1.Total != 3 {
		t.Errorf("Total = %d, want 3", page1.Total)
	}

	page2 := search(t, searcher, services.SearchQuery{QueryString: "learning", Page: 2, PageSize: 2})
	if got := hitIDs(page2); len(got) != 1 || got[0] != "doc3" {
		t.Errorf("page 2 = %v, want [doc3]", got)
	}

	beyond := search(t, searcher, services.SearchQuery{QueryString: "learning", Page: 9, PageSize: 2})
	if len(beyond.Hits) != 0 || beyond.Total != 3 {
		t.Errorf("page beyond end = %+v, want no hits, Total 3", beyond)
	}
}

func TestAnalyzerMismatchSurfacesAsWarning(t *testing.T) {
	searcher, settings := newTestIndex(t, newsDocs())
	settings.AnalyzerFingerprint = "stale-fingerprint"

	result := search(t, searcher, services.SearchQuery{QueryString: "learning"})
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one analyzer mismatch warning", result.Warnings)
	}
	// The query still returns results.
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
}

func TestDeletedDocumentsNeverMatch(t *testing.T) {
	settings := &config.IndexSettings{Name: "news", Fields: config.DefaultNewsFields()}
	settings.ApplyDefaults()
	invIndex := index.NewInvertedIndex(settings)
	docStore := store.NewDocumentStore()
	indexer, err := indexing.NewService(invIndex, docStore)
	if err != nil {
		t.Fatalf("indexing.NewService: %v", err)
	}
	if _, err := indexer.AddDocuments(newsDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if err := indexer.DeleteDocument("doc2"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	searcher, err := NewService(invIndex, docStore, settings)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	// Before compaction the tombstone filter hides doc2, including from NOT.
	result := search(t, searcher, services.SearchQuery{QueryString: "declines"})
	if result.Total != 0 {
		t.Errorf("hits for deleted doc's term = %d, want 0", result.Total)
	}
	result = search(t, searcher, services.SearchQuery{QueryString: "NOT machine"})
	if result.Total != 0 {
		t.Errorf("NOT machine = %d hits, want 0 (doc2 deleted)", result.Total)
	}
}
