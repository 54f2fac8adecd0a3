// Package indexing implements the ingest path: document validation, typed
// field analysis, and posting-list updates.
package indexing

import (
	"fmt"

	"github.com/newsearch/news-search-engine/index"
	"github.com/newsearch/news-search-engine/internal/analysis"
	internalErrors "github.com/newsearch/news-search-engine/internal/errors"
	"github.com/newsearch/news-search-engine/model"
	"github.com/newsearch/news-search-engine/store"
)

// Service implements the indexing logic for a single index.
// It fulfills the services.Indexer interface.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	analyzer      *analysis.Analyzer
}

// NewService creates a new indexing Service. The analyzer is built from the
// settings attached to the inverted index, so the ingest path and the query
// path share one analyzer configuration.
func NewService(invertedIndex *index.InvertedIndex, documentStore *store.DocumentStore) (*Service, error) {
	if invertedIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if documentStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if invertedIndex.Settings == nil {
		return nil, fmt.Errorf("inverted index settings cannot be nil")
	}

	analyzer, err := analysis.NewAnalyzer(invertedIndex.Settings.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}

	return &Service{
		invertedIndex: invertedIndex,
		documentStore: documentStore,
		analyzer:      analyzer,
	}, nil
}

// analyzedDocument is the per-document intermediate state produced off-lock
// during ingest: every declared field's value already turned into terms.
type analyzedDocument struct {
	externalID string
	doc        model.Document
	fields     map[string][]index.TermPosition
}

// analyzeDocument validates one document and analyzes its fields. It returns a
// *errors.DocumentValidationError for a missing identifier, an undeclared
// field, or a malformed field value.
func (s *Service) analyzeDocument(doc model.Document) (*analyzedDocument, error) {
	externalID, ok := doc.GetID()
	if !ok {
		return nil, internalErrors.NewDocumentValidationError("", model.IDField, "missing or empty document identifier")
	}

	settings := s.invertedIndex.Settings
	analyzed := &analyzedDocument{
		externalID: externalID,
		doc:        doc,
		fields:     make(map[string][]index.TermPosition),
	}

	for name, value := range doc {
		fieldType, declared := settings.FieldType(name)
		if !declared {
			if name == model.IDField {
				continue // the identifier is always accepted
			}
			return nil, internalErrors.NewDocumentValidationError(externalID, name, "field is not declared in the index settings")
		}

		terms, err := s.termsForValue(fieldType, value)
		if err != nil {
			return nil, internalErrors.NewDocumentValidationError(externalID, name, err.Error())
		}
		if len(terms) > 0 {
			analyzed.fields[name] = terms
		}
	}

	return analyzed, nil
}

// apply writes an analyzed document into the store and the inverted index.
// On re-ingest the previous version's postings are removed first, so replace
// semantics hold without duplicated postings.
func (s *Service) apply(analyzed *analyzedDocument) {
	internalID, previous, existed := s.documentStore.Upsert(analyzed.externalID, analyzed.doc)

	if existed && previous != nil {
		s.removePostings(internalID, previous)
	}

	for field, terms := range analyzed.fields {
		s.invertedIndex.Add(internalID, field, terms)
	}
}

// removePostings eagerly deletes a document's entries using terms re-derived
// from the stored previous version. If the analyzer configuration changed
// since that version was indexed, some stale terms can survive until the next
// full reindex; the fingerprint check surfaces that condition.
func (s *Service) removePostings(internalID uint32, doc model.Document) {
	settings := s.invertedIndex.Settings
	for name, value := range doc {
		fieldType, declared := settings.FieldType(name)
		if !declared {
			continue
		}
		terms, err := s.termsForValue(fieldType, value)
		if err != nil || len(terms) == 0 {
			continue
		}
		flat := make([]string, len(terms))
		for i, tp := range terms {
			flat[i] = tp.Term
		}
		s.invertedIndex.RemoveTerms(internalID, name, flat)
	}
}

// DeleteDocument removes a document by its external ID. The stored document
// goes away immediately; its postings are tombstoned and reclaimed by the next
// compaction.
func (s *Service) DeleteDocument(docID string) error {
	_, internalID, ok := s.documentStore.Delete(docID)
	if !ok {
		return internalErrors.NewDocumentNotFoundError(docID)
	}
	s.invertedIndex.RemoveDocument(internalID)
	return nil
}

// DeleteAllDocuments removes all documents, clearing both the document store
// and the inverted index.
func (s *Service) DeleteAllDocuments() error {
	s.documentStore.Clear()
	s.invertedIndex.Clear()
	return nil
}
