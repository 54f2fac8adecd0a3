package indexing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/newsearch/news-search-engine/config"
	"github.com/newsearch/news-search-engine/index"
)

// Accepted layouts for date field values, tried in order. Numeric values are
// taken as epoch milliseconds.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// termsForValue turns a raw field value into indexable terms according to the
// field's declared type:
//
//   - text: the full analysis chain; positions index the filtered unigram
//     stream, shingles carry their first token's position.
//   - keyword: the value verbatim as a single term; string arrays index each
//     element as one term.
//   - date: canonicalized to the decimal epoch-milliseconds string.
func (s *Service) termsForValue(fieldType config.FieldType, value interface{}) ([]index.TermPosition, error) {
	switch fieldType {
	case config.FieldTypeText:
		text, err := flattenText(value)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		stream := s.analyzer.Analyze(text)
		terms := make([]index.TermPosition, len(stream.Tokens))
		for i, token := range stream.Tokens {
			terms[i] = index.TermPosition{Term: token.Term, Position: uint32(token.Position)}
		}
		return terms, nil

	case config.FieldTypeKeyword:
		values, err := flattenKeywords(value)
		if err != nil {
			return nil, err
		}
		terms := make([]index.TermPosition, 0, len(values))
		for i, v := range values {
			if v == "" {
				continue
			}
			terms = append(terms, index.TermPosition{Term: v, Position: uint32(i)})
		}
		return terms, nil

	case config.FieldTypeDate:
		millis, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		return []index.TermPosition{{Term: strconv.FormatInt(millis, 10), Position: 0}}, nil

	default:
		return nil, fmt.Errorf("unhandled field type %q", fieldType)
	}
}

// flattenText joins string or string-array values into one analyzable string.
func flattenText(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, " "), nil
	case []interface{}: // JSON arrays unmarshal to []interface{}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			strItem, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("text array element has unhandled type %T", item)
			}
			parts = append(parts, strItem)
		}
		return strings.Join(parts, " "), nil
	default:
		return "", fmt.Errorf("text value has unhandled type %T", value)
	}
}

func flattenKeywords(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, item := range v {
			strItem, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("keyword array element has unhandled type %T", item)
			}
			values = append(values, strItem)
		}
		return values, nil
	default:
		return nil, fmt.Errorf("keyword value has unhandled type %T", value)
	}
}

// parseDate accepts RFC3339-style strings or numeric epoch milliseconds and
// returns canonical epoch milliseconds (UTC).
func parseDate(value interface{}) (int64, error) {
	switch v := value.(type) {
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().UnixMilli(), nil
			}
		}
		// A bare integer string is epoch millis, matching the numeric form.
		if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
			return millis, nil
		}
		return 0, fmt.Errorf("malformed date value %q", v)
	case float64: // JSON numbers unmarshal to float64
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("date value has unhandled type %T", value)
	}
}

// CanonicalDateTerm is the query-side counterpart of date canonicalization:
// it maps a raw query token onto the indexed date term, so "2024-01-15" in a
// query matches a document ingested with the same instant.
func CanonicalDateTerm(raw string) (string, bool) {
	millis, err := parseDate(raw)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(millis, 10), true
}
