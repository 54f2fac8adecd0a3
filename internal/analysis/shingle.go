package analysis

import "strings"

// ShingleSeparator joins the constituent terms of a shingle.
const ShingleSeparator = " "

// ShingleFilter expands a unigram stream into contiguous n-grams of size
// Min..Max, optionally keeping the unigrams themselves.
//
// Shingles are built from the stream the filter receives, i.e. the *filtered*
// token stream: after stopword removal, shingles span adjacent *surviving*
// tokens, not tokens that were adjacent in the original text. "machine AND
// learning" with "and" stopped therefore produces the shingle
// "machine learning".
//
// Emission order: windows are ordered by the position of their first token,
// shorter windows first on ties. For N input unigrams with Min=2, Max=3 and
// OutputUnigrams, the output holds exactly N + max(0,N-1) + max(0,N-2) tokens.
type ShingleFilter struct {
	Min            int
	Max            int
	OutputUnigrams bool
}

func (f ShingleFilter) Filter(stream TokenStream) TokenStream {
	n := len(stream.Tokens)
	tokens := make([]Token, 0, n*(f.Max-f.Min+2))

	for start := 0; start < n; start++ {
		first := stream.Tokens[start]

		if f.OutputUnigrams {
			tokens = append(tokens, first)
		}

		for size := f.Min; size <= f.Max; size++ {
			if start+size > n {
				break
			}
			parts := make([]string, size)
			for i := 0; i < size; i++ {
				parts[i] = stream.Tokens[start+i].Term
			}
			tokens = append(tokens, Token{
				Term:        strings.Join(parts, ShingleSeparator),
				Position:    first.Position,
				StartOffset: first.StartOffset,
			})
		}
	}

	return NewTokenStream(tokens)
}
