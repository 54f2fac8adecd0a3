package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/newsearch/news-search-engine/internal/errors"
)

type tokenKind int

const (
	tokenTerm tokenKind = iota
	tokenPhrase
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokenTerm:
		return "term"
	case tokenPhrase:
		return "phrase"
	case tokenAnd:
		return "AND"
	case tokenOr:
		return "OR"
	case tokenNot:
		return "NOT"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenEOF:
		return "end of query"
	}
	return "unknown"
}

type token struct {
	kind   tokenKind
	text   string // term text or phrase content (without quotes)
	offset int    // byte offset in the query string
}

// lex splits a query string into tokens. Operators are the uppercase words
// AND, OR, NOT (the query_string convention); lowercase "and" is an ordinary
// search term. An unterminated phrase quote is a SyntaxError at the opening
// quote.
func lex(input string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case unicode.IsSpace(r):
			i += size

		case r == '(':
			tokens = append(tokens, token{kind: tokenLParen, offset: i})
			i += size

		case r == ')':
			tokens = append(tokens, token{kind: tokenRParen, offset: i})
			i += size

		case r == '"':
			end := strings.IndexByte(input[i+1:], '"')
			if end < 0 {
				return nil, errors.NewSyntaxError("unterminated phrase quote", i)
			}
			tokens = append(tokens, token{kind: tokenPhrase, text: input[i+1 : i+1+end], offset: i})
			i += end + 2

		default:
			start := i
			for i < len(input) {
				r, size := utf8.DecodeRuneInString(input[i:])
				if unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' {
					break
				}
				i += size
			}
			word := input[start:i]
			switch word {
			case "AND":
				tokens = append(tokens, token{kind: tokenAnd, text: word, offset: start})
			case "OR":
				tokens = append(tokens, token{kind: tokenOr, text: word, offset: start})
			case "NOT":
				tokens = append(tokens, token{kind: tokenNot, text: word, offset: start})
			default:
				tokens = append(tokens, token{kind: tokenTerm, text: word, offset: start})
			}
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, offset: len(input)})
	return tokens, nil
}
