package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/store"
)

func newTestService(t *testing.T) (*Service, *index.InvertedIndex, *store.DocumentStore) {
	t.Helper()
	settings := &config.IndexSettings{Name: "news", Fields: config.DefaultNewsFields()}
	settings.ApplyDefaults()

	invIndex := index.NewInvertedIndex(settings)
	docStore := store.NewDocumentStore()
	service, err := NewService(invIndex, docStore)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, invIndex, docStore
}

func TestAddDocumentsIndexesTextFields(t *testing.T) {
	service, invIndex, docStore := newTestService(t)

	result, err := service.AddDocuments([]model.Document{
		{"uuid": "doc1", "title": "Machine learning improves"},
	})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if result.IndexedCount != 1 || result.Failed() {
		t.Fatalf("result = %+v, want 1 indexed, no failures", result)
	}

	if docStore.Count() != 1 {
		t.Errorf("stored docs = %d, want 1", docStore.Count())
	}
	// Unigram and shingle terms both land in the title posting lists.
	for _, term := range []string{"machin", "learn", "machin learn", "machin learn improv"} {
		if got := invIndex.PostingsFor("title", term); len(got) != 1 {
			t.Errorf("postings for %q = %+v, want one entry", term, got)
		}
	}
}

func TestAddDocumentsKeywordFieldVerbatim(t *testing.T) {
	service, invIndex, _ := newTestService(t)

	_, err := service.AddDocuments([]model.Document{
		{"uuid": "doc1", "author": "Jane Roe", "categories": []interface{}{"Politics", "World News"}},
	})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	// Keyword values are single terms, no tokenization or lowercasing.
	if got := invIndex.PostingsFor("author", "Jane Roe"); len(got) != 1 {
		t.Errorf("postings for author 'Jane Roe' = %+v, want one entry", got)
	}
	if got := invIndex.PostingsFor("author", "jane"); got != nil {
		t.Errorf("keyword field must not be analyzed, got postings %+v", got)
	}
	if got := invIndex.PostingsFor("categories", "World News"); len(got) != 1 {
		t.Errorf("postings for category = %+v, want one entry", got)
	}
}

func TestAddDocumentsDateCanonicalization(t *testing.T) {
	service, invIndex, _ := newTestService(t)

	// 2024-01-15T10:00:00Z = 1705312800000 epoch millis.
	docs := []model.Document{
		{"uuid": "rfc3339", "published": "2024-01-15T10:00:00Z"},
		{"uuid": "millis-number", "published": float64(1705312800000)},
		{"uuid": "millis-string", "published": "1705312800000"},
	}
	result, err := service.AddDocuments(docs)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if result.IndexedCount != 3 {
		t.Fatalf("result = %+v, want 3 indexed", result)
	}

	// All three forms canonicalize to the same term.
	if got := invIndex.PostingsFor("published", "1705312800000"); len(got) != 3 {
		t.Errorf("postings for canonical date term = %d entries, want 3", len(got))
	}
}

func TestCanonicalDateTerm(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"2024-01-15T10:00:00Z", "1705312800000", true},
		{"1705312800000", "1705312800000", true},
		{"2024-01-15", "1705276800000", true},
		{"not-a-date", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalDateTerm(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalDateTerm(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAddDocumentsCollectsFailuresAndContinues(t *testing.T) {
	service, _, docStore := newTestService(t)

	docs := []model.Document{
		{"uuid": "good-1", "title": "first"},
		{"title": "no identifier"},
		{"uuid": "bad-field", "title": "x", "undeclared": "y"},
		{"uuid": "bad-date", "published": "yesterday-ish"},
		{"uuid": "good-2", "title": "second"},
	}

	result, err := service.AddDocuments(docs)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	if result.IndexedCount != 2 {
		t.Errorf("indexed = %d, want 2", result.IndexedCount)
	}
	if len(result.FailedDocuments) != 3 {
		t.Fatalf("failures = %+v, want 3", result.FailedDocuments)
	}

	byID := make(map[string]string)
	for _, f := range result.FailedDocuments {
		byID[f.DocumentID] = f.Error
	}
	if _, ok := byID["<unknown>"]; !ok {
		t.Errorf("missing-identifier failure not reported: %v", byID)
	}
	if msg, ok := byID["bad-field"]; !ok || !strings.Contains(msg, "not declared") {
		t.Errorf("undeclared-field failure = %q", msg)
	}
	if msg, ok := byID["bad-date"]; !ok || !strings.Contains(msg, "published") {
		t.Errorf("malformed-date failure = %q", msg)
	}

	// The good documents made it in despite the failures.
	if docStore.Count() != 2 {
		t.Errorf("stored docs = %d, want 2", docStore.Count())
	}
}

func TestAddDocumentsEmptyBatch(t *testing.T) {
	service, _, _ := newTestService(t)
	result, err := service.AddDocuments(nil)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if result.IndexedCount != 0 || result.Failed() {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestReplaceRemovesStalePostings(t *testing.T) {
	service, invIndex, docStore := newTestService(t)

	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "original headline"})
	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "updated story"})

	if docStore.Count() != 1 {
		t.Errorf("stored docs = %d, want 1", docStore.Count())
	}
	// The old version's terms are gone, not shadowed.
	if got := invIndex.PostingsFor("title", "origin"); got != nil {
		t.Errorf("stale postings survived replace: %+v", got)
	}
	if got := invIndex.PostingsFor("title", "updat"); len(got) != 1 {
		t.Errorf("postings for new term = %+v, want one entry", got)
	}
	if invIndex.TombstoneCount() != 0 {
		t.Errorf("replace must not tombstone, got %d", invIndex.TombstoneCount())
	}
}

func TestDeleteDocument(t *testing.T) {
	service, invIndex, docStore := newTestService(t)
	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "breaking news"})

	if err := service.DeleteDocument("doc1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	if docStore.Count() != 0 {
		t.Errorf("stored docs = %d, want 0", docStore.Count())
	}
	if got := invIndex.PostingsFor("title", "break"); got != nil {
		t.Errorf("postings after delete = %+v, want nil", got)
	}
	if invIndex.TombstoneCount() != 1 {
		t.Errorf("tombstones = %d, want 1", invIndex.TombstoneCount())
	}

	err := service.DeleteDocument("doc1")
	if !errors.Is(err, internalErrors.ErrDocumentNotFound) {
		t.Errorf("second delete = %v, want ErrDocumentNotFound", err)
	}
}

func TestDeleteAllDocuments(t *testing.T) {
	service, invIndex, docStore := newTestService(t)
	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "one"})
	mustIndex(t, service, model.Document{"uuid": "doc2", "title": "two"})

	if err := service.DeleteAllDocuments(); err != nil {
		t.Fatalf("DeleteAllDocuments: %v", err)
	}
	if docStore.Count() != 0 || invIndex.TermCount() != 0 {
		t.Errorf("docs = %d, terms = %d, want both 0", docStore.Count(), invIndex.TermCount())
	}
}

func TestReindexRebuildsPostings(t *testing.T) {
	service, invIndex, _ := newTestService(t)
	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "machine learning"})
	mustIndex(t, service, model.Document{"uuid": "doc2", "title": "deep learning"})
	if err := service.DeleteDocument("doc2"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	if err := service.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	// The deleted document does not come back and the tombstone is gone.
	if got := invIndex.PostingsFor("title", "deep"); got != nil {
		t.Errorf("postings for deleted doc's term = %+v, want nil", got)
	}
	if got := invIndex.PostingsFor("title", "learn"); len(got) != 1 {
		t.Errorf("postings for learn = %+v, want one entry", got)
	}
	if invIndex.TombstoneCount() != 0 {
		t.Errorf("tombstones after reindex = %d, want 0", invIndex.TombstoneCount())
	}
}

func TestReindexIsCancellable(t *testing.T) {
	service, _, _ := newTestService(t)
	mustIndex(t, service, model.Document{"uuid": "doc1", "title": "one"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := service.Reindex(ctx); err != context.Canceled {
		t.Errorf("Reindex with cancelled context = %v, want context.Canceled", err)
	}
}

func mustIndex(t *testing.T, service *Service, doc model.Document) {
	t.Helper()
	result, err := service.AddDocuments([]model.Document{doc})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if result.Failed() {
		t.Fatalf("document rejected: %+v", result.FailedDocuments)
	}
}
