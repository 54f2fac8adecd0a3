// Package store holds the document store: stored field values addressable by
// external (string) or internal (uint32) document identifier.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/newsearch/news-search-engine/model"
)

func init() {
	// Register value types that appear inside model.Document
	// (map[string]interface{}) so gob can encode them behind interface{}.
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
	gob.Register([]string{})
	gob.Register(float64(0))
	gob.Register(false)
}

// DocumentStore maps internal uint32 IDs to stored documents and keeps the
// external-ID mapping. Documents are immutable once stored: Upsert replaces
// the whole value, there is no in-place mutation.
type DocumentStore struct {
	mu                     sync.RWMutex
	docs                   map[uint32]model.Document
	externalIDtoInternalID map[string]uint32
	nextID                 uint32
}

// NewDocumentStore creates an empty store. Internal IDs start at 0.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs:                   make(map[uint32]model.Document),
		externalIDtoInternalID: make(map[string]uint32),
	}
}

// Upsert stores doc under externalID. If the ID is already known the previous
// document is returned so the caller can clean up its postings; otherwise a
// fresh internal ID is assigned. Internal IDs of deleted documents are never
// reused.
func (ds *DocumentStore) Upsert(externalID string, doc model.Document) (internalID uint32, previous model.Document, existed bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	internalID, existed = ds.externalIDtoInternalID[externalID]
	if existed {
		previous = ds.docs[internalID]
	} else {
		internalID = ds.nextID
		ds.externalIDtoInternalID[externalID] = internalID
		ds.nextID++
	}
	ds.docs[internalID] = doc
	return internalID, previous, existed
}

// Get returns the document stored under the internal ID.
func (ds *DocumentStore) Get(internalID uint32) (model.Document, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[internalID]
	return doc, ok
}

// GetByExternalID returns the document and its internal ID for an external ID.
func (ds *DocumentStore) GetByExternalID(externalID string) (model.Document, uint32, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	internalID, ok := ds.externalIDtoInternalID[externalID]
	if !ok {
		return nil, 0, false
	}
	doc, ok := ds.docs[internalID]
	return doc, internalID, ok
}

// ExternalID returns the external identifier of a stored document.
func (ds *DocumentStore) ExternalID(internalID uint32) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	doc, ok := ds.docs[internalID]
	if !ok {
		return "", false
	}
	id, ok := doc.GetID()
	return id, ok
}

// Delete removes the document stored under externalID and returns it together
// with its internal ID.
func (ds *DocumentStore) Delete(externalID string) (model.Document, uint32, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	internalID, ok := ds.externalIDtoInternalID[externalID]
	if !ok {
		return nil, 0, false
	}
	doc := ds.docs[internalID]
	delete(ds.docs, internalID)
	delete(ds.externalIDtoInternalID, externalID)
	return doc, internalID, true
}

// Clear removes all documents. The internal ID counter restarts at 0, which is
// safe because the inverted index is cleared alongside.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.docs = make(map[uint32]model.Document)
	ds.externalIDtoInternalID = make(map[string]uint32)
	ds.nextID = 0
}

// Count returns the number of stored documents.
func (ds *DocumentStore) Count() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return len(ds.docs)
}

// Range calls fn for every stored document until fn returns false. The lock is
// held for the duration; fn must not call back into the store.
func (ds *DocumentStore) Range(fn func(internalID uint32, doc model.Document) bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for id, doc := range ds.docs {
		if !fn(id, doc) {
			return
		}
	}
}

// gobDocumentStoreData is a helper struct for Gob encoding/decoding
// DocumentStore data. It excludes the mutex.
type gobDocumentStoreData struct {
	Docs                   map[uint32]model.Document
	ExternalIDtoInternalID map[string]uint32
	NextID                 uint32
}

// GobEncode implements the gob.GobEncoder interface for DocumentStore.
func (ds *DocumentStore) GobEncode() ([]byte, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	// JSON unmarshalling leaves []interface{} behind; convert all-string
	// slices to []string so gob round-trips them without surprises.
	storableDocs := make(map[uint32]model.Document, len(ds.docs))
	for id, doc := range ds.docs {
		storableDoc := make(model.Document, len(doc))
		for k, val := range doc {
			if interfaceSlice, ok := val.([]interface{}); ok {
				stringSlice := make([]string, 0, len(interfaceSlice))
				allStrings := true
				for _, item := range interfaceSlice {
					strItem, isString := item.(string)
					if !isString {
						allStrings = false
						break
					}
					stringSlice = append(stringSlice, strItem)
				}
				if allStrings {
					storableDoc[k] = stringSlice
				} else {
					storableDoc[k] = val
				}
			} else {
				storableDoc[k] = val
			}
		}
		storableDocs[id] = storableDoc
	}

	dataToEncode := gobDocumentStoreData{
		Docs:                   storableDocs,
		ExternalIDtoInternalID: ds.externalIDtoInternalID,
		NextID:                 ds.nextID,
	}

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(dataToEncode); err != nil {
		return nil, fmt.Errorf("failed to gob encode document store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for DocumentStore.
func (ds *DocumentStore) GobDecode(data []byte) error {
	decodedData := gobDocumentStoreData{}

	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	if err := decoder.Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode document store data: %w", err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.docs = decodedData.Docs
	ds.externalIDtoInternalID = decodedData.ExternalIDtoInternalID
	ds.nextID = decodedData.NextID

	if ds.docs == nil {
		ds.docs = make(map[uint32]model.Document)
	}
	if ds.externalIDtoInternalID == nil {
		ds.externalIDtoInternalID = make(map[string]uint32)
	}
	return nil
}
