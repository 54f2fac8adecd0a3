package indexing

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/model"
)

// AddDocuments ingests a batch of documents. Analysis runs in parallel across
// documents (each owns its intermediate state); the index writes then apply in
// batch order, serialized per shard inside the inverted index.
//
// Rejected documents do not fail the batch: their IDs and reasons are
// collected in the returned BatchResult and the remaining documents proceed.
// Nothing is retried automatically; callers resubmit fixed documents.
// This satisfies the services.Indexer interface.
func (s *Service) AddDocuments(docs []model.Document) (model.BatchResult, error) {
	if len(docs) == 0 {
		return model.BatchResult{}, nil
	}

	analyzed := make([]*analyzedDocument, len(docs))
	failures := make([]error, len(docs))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			analyzed[i], failures[i] = s.analyzeDocument(doc)
			return nil
		})
	}
	_ = g.Wait() // workers only record per-document outcomes

	var result model.BatchResult
	for i := range docs {
		if failures[i] != nil {
			result.FailedDocuments = append(result.FailedDocuments, failedDocument(failures[i]))
			continue
		}
		// Within one batch, a repeated ID follows normal replace semantics:
		// the later occurrence removes the earlier one's postings.
		s.apply(analyzed[i])
		result.IndexedCount++
	}

	return result, nil
}

func failedDocument(err error) model.FailedDocument {
	var validationErr *internalErrors.DocumentValidationError
	if errors.As(err, &validationErr) {
		id := validationErr.DocumentID
		if id == "" {
			id = "<unknown>"
		}
		return model.FailedDocument{DocumentID: id, Error: validationErr.Error()}
	}
	return model.FailedDocument{DocumentID: "<unknown>", Error: err.Error()}
}

// Compact rewrites posting lists without tombstoned documents. Safe to run in
// the background; foreground reads keep working against pre- or
// post-compaction list versions.
func (s *Service) Compact(ctx context.Context) error {
	return s.invertedIndex.Compact(ctx)
}

// Reindex rebuilds the inverted index from the stored documents using the
// current analyzer configuration. Used after analyzer settings change to bring
// postings back in line with query-time analysis.
func (s *Service) Reindex(ctx context.Context) error {
	var docs []model.Document
	s.documentStore.Range(func(_ uint32, doc model.Document) bool {
		docs = append(docs, doc)
		return true
	})

	s.invertedIndex.Clear()

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		analyzed, err := s.analyzeDocument(doc)
		if err != nil {
			// Stored documents passed validation at ingest time; a failure
			// here means the field declarations changed incompatibly.
			return err
		}
		s.apply(analyzed)
	}
	return nil
}
