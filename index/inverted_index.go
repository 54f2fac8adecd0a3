// Package index holds the sharded inverted index: the mapping from
// (field, term) to posting lists, plus per-field document universes and
// tombstones for deferred deletion.
package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/newsearch/news-search-engine/config"
)

// numShards spreads (field, term) keys over independent locks so concurrent
// writers only contend when they touch the same slice of the term space. A
// single global lock would serialize all posting-list merges.
const numShards = 16

// keySeparator joins field and term into a shard key. NUL cannot appear in
// either side: field names are validated and the tokenizer never emits it.
const keySeparator = "\x00"

// TermPosition is one analyzed term occurrence handed to Add.
type TermPosition struct {
	Term     string
	Position uint32
}

type shard struct {
	mu       sync.RWMutex
	postings map[string]PostingList
}

// InvertedIndex maps (field, term) to a posting list. Writes serialize per
// shard; reads take shard read-locks and return copies, so readers always see
// a consistent pre- or post-write view of each list.
//
// Deletion is tombstone-based: RemoveDocument only marks the document, reads
// filter marked documents out, and Compact rewrites the lists in the
// background.
type InvertedIndex struct {
	shards [numShards]*shard

	// docsMu guards fieldDocs and tombstones.
	docsMu     sync.RWMutex
	fieldDocs  map[string][]uint32 // per-field sorted universe of DocIDs
	tombstones map[uint32]struct{}

	Settings *config.IndexSettings // Reference to settings for this index
}

// NewInvertedIndex creates an empty index bound to the given settings.
func NewInvertedIndex(settings *config.IndexSettings) *InvertedIndex {
	ii := &InvertedIndex{
		fieldDocs:  make(map[string][]uint32),
		tombstones: make(map[uint32]struct{}),
		Settings:   settings,
	}
	for i := range ii.shards {
		ii.shards[i] = &shard{postings: make(map[string]PostingList)}
	}
	return ii
}

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % numShards
}

// Add indexes the analyzed term sequence of one document field. Frequencies
// are aggregated per distinct term and posting lists stay sorted by DocID.
// Callers analyze outside any lock; only the per-shard merges serialize.
func (ii *InvertedIndex) Add(docID uint32, field string, terms []TermPosition) {
	if len(terms) == 0 {
		return
	}

	// Per-document intermediate state, built without locks.
	aggregated := make(map[string]*Posting, len(terms))
	for _, tp := range terms {
		p, ok := aggregated[tp.Term]
		if !ok {
			p = &Posting{DocID: docID}
			aggregated[tp.Term] = p
		}
		p.Frequency++
		p.Positions = append(p.Positions, tp.Position)
	}

	for term, posting := range aggregated {
		sort.Slice(posting.Positions, func(i, j int) bool { return posting.Positions[i] < posting.Positions[j] })

		key := field + keySeparator + term
		sh := ii.shards[shardFor(key)]
		sh.mu.Lock()
		sh.postings[key] = sh.postings[key].upsert(*posting)
		sh.mu.Unlock()
	}

	ii.docsMu.Lock()
	ii.fieldDocs[field] = insertSorted(ii.fieldDocs[field], docID)
	ii.docsMu.Unlock()
}

// RemoveDocument tombstones a document: reads stop returning it immediately,
// while the posting lists themselves are rewritten later by Compact.
func (ii *InvertedIndex) RemoveDocument(docID uint32) {
	ii.docsMu.Lock()
	ii.tombstones[docID] = struct{}{}
	ii.docsMu.Unlock()
}

// RemoveTerms eagerly deletes a document's entries from the given field's
// posting lists. Used on re-ingest, where the internal ID is reused and a
// tombstone would outlive the replacement.
func (ii *InvertedIndex) RemoveTerms(docID uint32, field string, terms []string) {
	unique := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		unique[term] = struct{}{}
	}

	for term := range unique {
		key := field + keySeparator + term
		sh := ii.shards[shardFor(key)]
		sh.mu.Lock()
		if list, ok := sh.postings[key]; ok {
			list = list.remove(docID)
			if len(list) == 0 {
				delete(sh.postings, key)
			} else {
				sh.postings[key] = list
			}
		}
		sh.mu.Unlock()
	}

	ii.docsMu.Lock()
	ii.fieldDocs[field] = removeSorted(ii.fieldDocs[field], docID)
	ii.docsMu.Unlock()
}

// PostingsFor returns a copy of the posting list for (field, term) with
// tombstoned documents filtered out. A tombstoned document is never returned,
// whether or not compaction has run.
func (ii *InvertedIndex) PostingsFor(field, term string) PostingList {
	key := field + keySeparator + term
	sh := ii.shards[shardFor(key)]

	sh.mu.RLock()
	list := sh.postings[key]
	copied := make(PostingList, len(list))
	copy(copied, list)
	sh.mu.RUnlock()

	if len(copied) == 0 {
		return nil
	}

	ii.docsMu.RLock()
	defer ii.docsMu.RUnlock()
	if len(ii.tombstones) == 0 {
		return copied
	}

	filtered := copied[:0]
	for _, p := range copied {
		if _, dead := ii.tombstones[p.DocID]; !dead {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

// FieldUniverse returns the sorted set of live DocIDs that have any term
// indexed under field. This is the complement base for NOT evaluation.
func (ii *InvertedIndex) FieldUniverse(field string) []uint32 {
	ii.docsMu.RLock()
	defer ii.docsMu.RUnlock()

	docs := ii.fieldDocs[field]
	universe := make([]uint32, 0, len(docs))
	for _, id := range docs {
		if _, dead := ii.tombstones[id]; !dead {
			universe = append(universe, id)
		}
	}
	return universe
}

// Compact rewrites all posting lists and field universes without tombstoned
// documents. It is cancellable and runs key by key under short shard locks, so
// foreground reads never block on the whole pass and always observe either the
// pre- or post-compaction version of a list.
func (ii *InvertedIndex) Compact(ctx context.Context) error {
	ii.docsMu.RLock()
	snapshot := make(map[uint32]struct{}, len(ii.tombstones))
	for id := range ii.tombstones {
		snapshot[id] = struct{}{}
	}
	ii.docsMu.RUnlock()

	if len(snapshot) == 0 {
		return nil
	}

	for _, sh := range ii.shards {
		sh.mu.RLock()
		keys := make([]string, 0, len(sh.postings))
		for key := range sh.postings {
			keys = append(keys, key)
		}
		sh.mu.RUnlock()

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}

			sh.mu.Lock()
			list, ok := sh.postings[key]
			if !ok {
				sh.mu.Unlock()
				continue
			}
			rewritten := make(PostingList, 0, len(list))
			for _, p := range list {
				if _, dead := snapshot[p.DocID]; !dead {
					rewritten = append(rewritten, p)
				}
			}
			if len(rewritten) == 0 {
				delete(sh.postings, key)
			} else if len(rewritten) != len(list) {
				sh.postings[key] = rewritten
			}
			sh.mu.Unlock()
		}
	}

	ii.docsMu.Lock()
	for field, docs := range ii.fieldDocs {
		kept := make([]uint32, 0, len(docs))
		for _, id := range docs {
			if _, dead := snapshot[id]; !dead {
				kept = append(kept, id)
			}
		}
		ii.fieldDocs[field] = kept
	}
	// Only drop the tombstones this pass actually compacted; documents deleted
	// mid-compaction stay marked for the next pass.
	for id := range snapshot {
		delete(ii.tombstones, id)
	}
	ii.docsMu.Unlock()

	return nil
}

// TermCount returns the number of distinct (field, term) keys.
func (ii *InvertedIndex) TermCount() int {
	total := 0
	for _, sh := range ii.shards {
		sh.mu.RLock()
		total += len(sh.postings)
		sh.mu.RUnlock()
	}
	return total
}

// TombstoneCount returns the number of documents deleted but not yet compacted.
func (ii *InvertedIndex) TombstoneCount() int {
	ii.docsMu.RLock()
	defer ii.docsMu.RUnlock()
	return len(ii.tombstones)
}

// Clear removes all postings, universes, and tombstones.
func (ii *InvertedIndex) Clear() {
	for _, sh := range ii.shards {
		sh.mu.Lock()
		sh.postings = make(map[string]PostingList)
		sh.mu.Unlock()
	}
	ii.docsMu.Lock()
	ii.fieldDocs = make(map[string][]uint32)
	ii.tombstones = make(map[uint32]struct{})
	ii.docsMu.Unlock()
}

func insertSorted(ids []uint32, id uint32) []uint32 {
	idx := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if idx < len(ids) && ids[idx] == id {
		return ids
	}
	ids = append(ids, 0)
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}

func removeSorted(ids []uint32, id uint32) []uint32 {
	idx := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if idx >= len(ids) || ids[idx] != id {
		return ids
	}
	return append(ids[:idx], ids[idx+1:]...)
}

// gobInvertedIndexData is a helper struct for Gob encoding/decoding
// InvertedIndex data. It excludes the mutexes.
type gobInvertedIndexData struct {
	Postings   map[string]PostingList
	FieldDocs  map[string][]uint32
	Tombstones map[uint32]struct{}
	Settings   *config.IndexSettings
}

// GobEncode implements the gob.GobEncoder interface for InvertedIndex.
func (ii *InvertedIndex) GobEncode() ([]byte, error) {
	flat := make(map[string]PostingList)
	for _, sh := range ii.shards {
		sh.mu.RLock()
		for key, list := range sh.postings {
			flat[key] = list
		}
		sh.mu.RUnlock()
	}

	ii.docsMu.RLock()
	dataToEncode := gobInvertedIndexData{
		Postings:   flat,
		FieldDocs:  ii.fieldDocs,
		Tombstones: ii.tombstones,
		Settings:   ii.Settings,
	}
	defer ii.docsMu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(dataToEncode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for InvertedIndex.
func (ii *InvertedIndex) GobDecode(data []byte) error {
	decodedData := gobInvertedIndexData{}

	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	if err := decoder.Decode(&decodedData); err != nil {
		return err
	}

	for i := range ii.shards {
		if ii.shards[i] == nil {
			ii.shards[i] = &shard{postings: make(map[string]PostingList)}
		}
	}
	for key, list := range decodedData.Postings {
		sh := ii.shards[shardFor(key)]
		sh.postings[key] = list
	}

	ii.docsMu.Lock()
	defer ii.docsMu.Unlock()
	ii.fieldDocs = decodedData.FieldDocs
	ii.tombstones = decodedData.Tombstones
	ii.Settings = decodedData.Settings

	if ii.fieldDocs == nil {
		ii.fieldDocs = make(map[string][]uint32)
	}
	if ii.tombstones == nil {
		ii.tombstones = make(map[uint32]struct{})
	}
	return nil
}
