package query

import (
	"fmt"

	"github.com/newsearch/news-search-engine/internal/errors"
)

// Parse turns a query string into an expression tree. It fails with a
// *errors.SyntaxError (carrying the byte offset) on unbalanced parentheses,
// unterminated phrase quotes, dangling operators, or empty groups.
//
// Precedence, loosest to tightest: OR, AND, NOT (unary), parentheses.
// Adjacent terms with no explicit operator are joined with AND — precision
// over recall; "machine learning" unquoted means both words must match.
// Binary operators are left-associative.
func Parse(queryString string) (Node, error) {
	tokens, err := lex(queryString)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if p.peek().kind == tokenEOF {
		return nil, errors.NewSyntaxError("empty query", 0)
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, errors.NewSyntaxError(fmt.Sprintf("unexpected %s", tok.kind), tok.offset)
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrNode{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles both explicit AND and the implicit operator between
// adjacent operands: any token that can start an operand continues the
// conjunction.
func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokenAnd:
			p.next()
		case tokenTerm, tokenPhrase, tokenNot, tokenLParen:
			// implicit AND
		default:
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &AndNode{Left: left, Right: right}
	}
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().kind == tokenNot {
		tok := p.next()
		switch p.peek().kind {
		case tokenTerm, tokenPhrase, tokenNot, tokenLParen:
			operand, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			return &NotNode{Operand: operand}, nil
		default:
			return nil, errors.NewSyntaxError("NOT must be followed by a term, phrase, or group", tok.offset)
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenTerm:
		p.next()
		return &TermNode{Term: tok.text}, nil

	case tokenPhrase:
		p.next()
		return &PhraseNode{Text: tok.text}, nil

	case tokenLParen:
		open := p.next()
		if p.peek().kind == tokenRParen {
			return nil, errors.NewSyntaxError("empty group", open.offset)
		}
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.kind != tokenRParen {
			return nil, errors.NewSyntaxError("unbalanced parentheses: missing ')'", open.offset)
		}
		p.next()
		return node, nil

	default:
		return nil, errors.NewSyntaxError(fmt.Sprintf("unexpected %s", tok.kind), tok.offset)
	}
}
