package search

import (
	"context"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
	"github.com/newsearch/news-search-engine/internal/analysis"
	"github.com/newsearch/news-search-engine/internal/indexing"
	"github.com/newsearch/news-search-engine/internal/query"
)

// evaluator walks a query expression tree against the inverted index for one
// search call. Evaluation is read-only; it can never corrupt the index.
type evaluator struct {
	ctx      context.Context
	index    *index.InvertedIndex
	analyzer *analysis.Analyzer
	settings *config.IndexSettings
	fields   []string // validated target fields
}

// eval resolves a tree node to a sorted document set. The context is checked
// per node so a query deadline covers the whole evaluation; individual term
// lookups are map reads and carry no timeout of their own.
func (e *evaluator) eval(node query.Node) (docSet, error) {
	if err := e.ctx.Err(); err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *query.TermNode:
		return e.evalTerm(n.Term), nil

	case *query.PhraseNode:
		return e.evalPhrase(n.Text), nil

	case *query.AndNode:
		return e.evalAnd(n)

	case *query.OrNode:
		left, err := e.eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return union(left, right), nil

	case *query.NotNode:
		// Bare NOT (not the right side of an AND): the complement has to be
		// materialized against the field universe.
		operand, err := e.eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return difference(e.universe(), operand), nil
	}

	return nil, nil
}

// evalAnd intersects its operands, with one special case: an AND whose
// operand is a NOT evaluates as set difference against the other side, so the
// universe is never materialized for the common `a AND NOT b` shape.
func (e *evaluator) evalAnd(n *query.AndNode) (docSet, error) {
	if not, ok := n.Right.(*query.NotNode); ok {
		return e.evalDifference(n.Left, not.Operand)
	}
	if not, ok := n.Left.(*query.NotNode); ok {
		return e.evalDifference(n.Right, not.Operand)
	}

	left, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}
	if len(left) == 0 {
		return nil, nil // short-circuit: intersection with empty is empty
	}
	right, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}
	return intersect(left, right), nil
}

func (e *evaluator) evalDifference(keep, subtract query.Node) (docSet, error) {
	keepSet, err := e.eval(keep)
	if err != nil {
		return nil, err
	}
	if len(keepSet) == 0 {
		return nil, nil
	}
	subtractSet, err := e.eval(subtract)
	if err != nil {
		return nil, err
	}
	return difference(keepSet, subtractSet), nil
}

// evalTerm resolves a raw query word across the target fields. The word is
// analyzed with each field's analyzer (full chain for text, verbatim for
// keyword, canonical epoch millis for date) and the per-field results are
// unioned with summed term-frequency scores.
func (e *evaluator) evalTerm(raw string) docSet {
	var result docSet
	for _, field := range e.fields {
		result = union(result, e.fieldTerm(field, raw))
	}
	return result
}

func (e *evaluator) fieldTerm(field, raw string) docSet {
	fieldType, _ := e.settings.FieldType(field)

	switch fieldType {
	case config.FieldTypeKeyword:
		return postingsToSet(e.index.PostingsFor(field, raw))

	case config.FieldTypeDate:
		term, ok := indexing.CanonicalDateTerm(raw)
		if !ok {
			return nil
		}
		return postingsToSet(e.index.PostingsFor(field, term))

	default: // text
		terms := e.analyzer.AnalyzeUnigrams(raw).Terms()
		if len(terms) == 0 {
			return nil // the word normalized away (e.g. a stopword)
		}
		result := postingsToSet(e.index.PostingsFor(field, terms[0]))
		// A single query word can analyze into several terms (punctuation
		// splits); all of them must match, like an implicit AND.
		for _, term := range terms[1:] {
			if len(result) == 0 {
				return nil
			}
			result = intersect(result, postingsToSet(e.index.PostingsFor(field, term)))
		}
		return result
	}
}

// evalPhrase resolves a quoted phrase. For text fields the phrase's analyzed
// unigrams must occupy consecutive positions; "machine learning" matches a
// title "machine learning improves" but not "learning machine". For keyword
// and date fields the whole phrase text is matched as one verbatim term.
func (e *evaluator) evalPhrase(text string) docSet {
	var result docSet
	for _, field := range e.fields {
		fieldType, _ := e.settings.FieldType(field)
		switch fieldType {
		case config.FieldTypeKeyword:
			result = union(result, postingsToSet(e.index.PostingsFor(field, text)))
		case config.FieldTypeDate:
			if term, ok := indexing.CanonicalDateTerm(text); ok {
				result = union(result, postingsToSet(e.index.PostingsFor(field, term)))
			}
		default:
			result = union(result, e.fieldPhrase(field, text))
		}
	}
	return result
}

func (e *evaluator) fieldPhrase(field, text string) docSet {
	terms := e.analyzer.AnalyzeUnigrams(text).Terms()
	if len(terms) == 0 {
		return nil
	}
	if len(terms) == 1 {
		return postingsToSet(e.index.PostingsFor(field, terms[0]))
	}

	lists := make([]index.PostingList, len(terms))
	for i, term := range terms {
		lists[i] = e.index.PostingsFor(field, term)
		if len(lists[i]) == 0 {
			return nil
		}
	}

	// Co-scan all lists on DocID, then verify positional adjacency.
	cursors := make([]int, len(lists))
	var result docSet

scan:
	for cursors[0] < len(lists[0]) {
		docID := lists[0][cursors[0]].DocID

		// Advance every other cursor to docID; if any list runs out, no more
		// documents can hold the full phrase.
		for i := 1; i < len(lists); i++ {
			for cursors[i] < len(lists[i]) && lists[i][cursors[i]].DocID < docID {
				cursors[i]++
			}
			if cursors[i] >= len(lists[i]) {
				break scan
			}
			if lists[i][cursors[i]].DocID != docID {
				cursors[0]++
				continue scan
			}
		}

		occurrences := phraseOccurrences(lists, cursors)
		if occurrences > 0 {
			result = append(result, scoredDoc{docID: docID, score: float64(occurrences)})
		}
		cursors[0]++
	}

	return result
}

// phraseOccurrences counts start positions p in the first term's postings such
// that term i occurs at position p+i for every following term.
func phraseOccurrences(lists []index.PostingList, cursors []int) uint32 {
	var count uint32
	for _, start := range lists[0][cursors[0]].Positions {
		matched := true
		for i := 1; i < len(lists); i++ {
			if !containsPosition(lists[i][cursors[i]].Positions, start+uint32(i)) {
				matched = false
				break
			}
		}
		if matched {
			count++
		}
	}
	return count
}

// containsPosition reports whether sorted positions contains want.
func containsPosition(positions []uint32, want uint32) bool {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := (lo + hi) / 2
		if positions[mid] < want {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(positions) && positions[lo] == want
}

// universe returns the union of live documents across the target fields,
// scored zero. Materialized only when a bare NOT demands it.
func (e *evaluator) universe() docSet {
	var result docSet
	for _, field := range e.fields {
		ids := e.index.FieldUniverse(field)
		set := make(docSet, len(ids))
		for i, id := range ids {
			set[i] = scoredDoc{docID: id}
		}
		result = union(result, set)
	}
	return result
}

func postingsToSet(list index.PostingList) docSet {
	if len(list) == 0 {
		return nil
	}
	set := make(docSet, len(list))
	for i, p := range list {
		set[i] = scoredDoc{docID: p.DocID, score: float64(p.Frequency)}
	}
	return set
}
