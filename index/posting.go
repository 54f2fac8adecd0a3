package index

// Posting associates a term with one document: the document's internal ID, how
// often the term occurs in the document's field, and the positions at which it
// occurs. Positions index into the analyzed (post-filter) unigram stream and
// back phrase queries.
type Posting struct {
	DocID     uint32
	Frequency uint32
	Positions []uint32
}

// PostingList is a slice of postings kept sorted ascending by DocID so that
// Boolean evaluation can use linear co-scans. A DocID appears at most once per
// list; frequencies are aggregated, never duplicated as extra entries.
type PostingList []Posting

// find returns the slice index holding docID, or the insertion point and false.
func (pl PostingList) find(docID uint32) (int, bool) {
	lo, hi := 0, len(pl)
	for lo < hi {
		mid := (lo + hi) / 2
		if pl[mid].DocID < docID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(pl) && pl[lo].DocID == docID
}

// upsert merges a posting into the list, keeping DocID order. An existing
// entry for the same document is replaced, not duplicated.
func (pl PostingList) upsert(p Posting) PostingList {
	idx, ok := pl.find(p.DocID)
	if ok {
		pl[idx] = p
		return pl
	}
	pl = append(pl, Posting{})
	copy(pl[idx+1:], pl[idx:])
	pl[idx] = p
	return pl
}

// remove deletes the entry for docID if present.
func (pl PostingList) remove(docID uint32) PostingList {
	idx, ok := pl.find(docID)
	if !ok {
		return pl
	}
	return append(pl[:idx], pl[idx+1:]...)
}
