// Package analysis implements the text analysis pipeline: char filters,
// tokenization, token filters, and shingle generation. The same pipeline runs
// at index time and query time so that postings and query terms stay
// comparable.
package analysis

// Token is a unit of text produced by the tokenizer and transformed by the
// token filter chain.
type Token struct {
	Term        string // the (possibly normalized) text of the token
	Position    int    // position within the token stream
	StartOffset int    // byte offset of the token start in the char-filtered input
}

// TokenStream is an ordered sequence of tokens flowing through the pipeline.
type TokenStream struct {
	Tokens []Token
}

// NewTokenStream wraps a token slice in a TokenStream.
func NewTokenStream(tokens []Token) TokenStream {
	return TokenStream{Tokens: tokens}
}

// Size returns the number of tokens in the stream.
func (ts TokenStream) Size() int {
	return len(ts.Tokens)
}

// Terms returns just the term strings, in stream order.
func (ts TokenStream) Terms() []string {
	terms := make([]string, len(ts.Tokens))
	for i, token := range ts.Tokens {
		terms[i] = token.Term
	}
	return terms
}
