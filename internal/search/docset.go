package search

// scoredDoc pairs an internal document ID with its accumulated score (term
// frequency sum across matched fields).
type scoredDoc struct {
	docID uint32
	score float64
}

// docSet is a document set sorted ascending by internal docID. All Boolean
// combinators are linear co-scans over sorted sets, never hash joins, so
// ordering stays stable and memory stays bounded on large posting lists.
type docSet []scoredDoc

// intersect returns documents present in both sets, scores summed.
func intersect(a, b docSet) docSet {
	out := make(docSet, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].docID < b[j].docID:
			i++
		case a[i].docID > b[j].docID:
			j++
		default:
			out = append(out, scoredDoc{docID: a[i].docID, score: a[i].score + b[j].score})
			i++
			j++
		}
	}
	return out
}

// union returns documents present in either set, scores summed on overlap.
func union(a, b docSet) docSet {
	out := make(docSet, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].docID < b[j].docID:
			out = append(out, a[i])
			i++
		case a[i].docID > b[j].docID:
			out = append(out, b[j])
			j++
		default:
			out = append(out, scoredDoc{docID: a[i].docID, score: a[i].score + b[j].score})
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// difference returns documents in a but not in b, keeping a's scores. This is
// the lazy-complement path for AND NOT: the universe is never materialized.
func difference(a, b docSet) docSet {
	out := make(docSet, 0, len(a))
	i, j := 0, 0
	for i < len(a) {
		for j < len(b) && b[j].docID < a[i].docID {
			j++
		}
		if j >= len(b) || b[j].docID != a[i].docID {
			out = append(out, a[i])
		}
		i++
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
