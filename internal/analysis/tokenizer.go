package analysis

import (
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits raw text into a stream of tokens with byte offsets and
// sequential positions.
type Tokenizer interface {
	Tokenize(string) TokenStream
}

// StandardTokenizer splits on language-agnostic word boundaries: a token is a
// maximal run of Unicode letters and digits, everything else is a boundary.
// It does not lowercase or otherwise normalize; that is the filter chain's job.
type StandardTokenizer struct{}

// Tokenize converts text into a TokenStream.
func (StandardTokenizer) Tokenize(text string) TokenStream {
	tokens := make([]Token, 0)

	start := -1 // byte offset of the current token, -1 when between tokens
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, Token{
				Term:        text[start:end],
				Position:    len(tokens),
				StartOffset: start,
			})
			start = -1
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
		} else {
			flush(i)
		}
		i += size
	}
	flush(len(text))

	return NewTokenStream(tokens)
}
