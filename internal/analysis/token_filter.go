package analysis

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// TokenFilter transforms a token stream into another token stream. A filter
// may drop tokens (stopword removal), rewrite them (lowercasing, stemming), or
// expand them (shingling). Filters run strictly in configured order and are
// order-sensitive: stemming before shingling yields different n-grams than the
// reverse.
type TokenFilter interface {
	Filter(TokenStream) TokenStream
}

// LowercaseFilter lowercases every term.
type LowercaseFilter struct{}

func (LowercaseFilter) Filter(stream TokenStream) TokenStream {
	tokens := make([]Token, len(stream.Tokens))
	for i, token := range stream.Tokens {
		token.Term = strings.ToLower(token.Term)
		tokens[i] = token
	}
	return NewTokenStream(tokens)
}

// StopFilter drops tokens whose term is in the stopword set. Expected to run
// after LowercaseFilter since the set is lowercase.
type StopFilter struct {
	stopwords map[string]struct{}
}

// NewStopFilter builds a StopFilter from the given words, or from the default
// English set when words is empty.
func NewStopFilter(words []string) StopFilter {
	if len(words) == 0 {
		return StopFilter{stopwords: defaultStopwords()}
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return StopFilter{stopwords: set}
}

func (f StopFilter) Filter(stream TokenStream) TokenStream {
	tokens := make([]Token, 0, len(stream.Tokens))
	for _, token := range stream.Tokens {
		if _, ok := f.stopwords[token.Term]; !ok {
			tokens = append(tokens, token)
		}
	}
	return NewTokenStream(tokens)
}

// ApostropheFilter is intentionally an identity transform. The upstream
// configuration names an "apostrophe" normalization stage but specifies no
// concrete rule for it (the standard tokenizer already splits on apostrophes),
// so the stage passes tokens through unchanged rather than guessing intent.
type ApostropheFilter struct{}

func (ApostropheFilter) Filter(stream TokenStream) TokenStream {
	return stream
}

// DecimalDigitFilter is intentionally an identity transform, for the same
// reason as ApostropheFilter: the named "decimal_digit" stage comes with only
// an identity example ("123" stays "123") and no concrete normalization rule.
type DecimalDigitFilter struct{}

func (DecimalDigitFilter) Filter(stream TokenStream) TokenStream {
	return stream
}

// TrimFilter trims leading and trailing whitespace from each term and drops
// tokens that become empty.
type TrimFilter struct{}

func (TrimFilter) Filter(stream TokenStream) TokenStream {
	tokens := make([]Token, 0, len(stream.Tokens))
	for _, token := range stream.Tokens {
		token.Term = strings.TrimSpace(token.Term)
		if token.Term != "" {
			tokens = append(tokens, token)
		}
	}
	return NewTokenStream(tokens)
}

// StemmerFilter reduces each term to an approximate English root using the
// snowball (Porter-family) algorithm. Stemming is deterministic: the same
// input always yields the same output. It is NOT guaranteed idempotent on
// already-stemmed input, so stemmed terms must never be re-fed through the
// filter expecting a fixed point.
type StemmerFilter struct{}

func (StemmerFilter) Filter(stream TokenStream) TokenStream {
	tokens := make([]Token, len(stream.Tokens))
	for i, token := range stream.Tokens {
		token.Term = english.Stem(token.Term, false)
		tokens[i] = token
	}
	return NewTokenStream(tokens)
}

// defaultStopwords returns a common English stopword set.
func defaultStopwords() map[string]struct{} {
	ws := []string{
		"a", "an", "the", "and", "or", "but",
		"to", "in", "of", "on", "for", "with", "as", "at", "by", "from",
		"is", "are", "was", "were", "be", "been", "being",
		"this", "that", "these", "those", "it", "its",
		"i", "me", "my", "we", "our", "you", "your",
		"he", "him", "his", "she", "her",
		"they", "them", "their",
		"do", "does", "did",
		"have", "has", "had",
		"not", "no", "nor",
		"if", "then", "else", "than", "so", "because", "while", "when", "where",
		"will", "would", "can", "could", "should",
		"into", "out", "up", "down", "over", "under",
		"here", "there", "once", "again",
	}
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}
