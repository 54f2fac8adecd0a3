package analysis

import (
	"fmt"

	"github.com/newsearch/news-search-engine/config"
)

// Analyzer composes char filters, a tokenizer, the token filter chain, and an
// optional shingle stage into one pipeline. The shingle stage is held apart
// from the scalar filters because phrase analysis needs the same chain without
// it.
type Analyzer struct {
	charFilters  []CharFilter
	tokenizer    Tokenizer
	tokenFilters []TokenFilter
	shingle      *ShingleFilter
}

// NewAnalyzer builds an Analyzer from validated analyzer settings. Unknown
// component names are an error; settings should have passed
// config.IndexSettings.Validate first.
func NewAnalyzer(settings config.AnalyzerSettings) (*Analyzer, error) {
	a := &Analyzer{}

	for _, name := range settings.CharFilters {
		switch name {
		case config.CharFilterHTMLStrip:
			a.charFilters = append(a.charFilters, HTMLStripCharFilter{})
		case config.CharFilterMapping:
			mapping, err := NewMappingCharFilter(settings.CharFilterMappings)
			if err != nil {
				return nil, err
			}
			a.charFilters = append(a.charFilters, mapping)
		default:
			return nil, fmt.Errorf("unknown char filter %q", name)
		}
	}

	switch settings.Tokenizer {
	case "", config.TokenizerStandard:
		a.tokenizer = StandardTokenizer{}
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", settings.Tokenizer)
	}

	for _, name := range settings.TokenFilters {
		switch name {
		case config.TokenFilterLowercase:
			a.tokenFilters = append(a.tokenFilters, LowercaseFilter{})
		case config.TokenFilterStop:
			a.tokenFilters = append(a.tokenFilters, NewStopFilter(settings.Stopwords))
		case config.TokenFilterApostrophe:
			a.tokenFilters = append(a.tokenFilters, ApostropheFilter{})
		case config.TokenFilterDecimalDigit:
			a.tokenFilters = append(a.tokenFilters, DecimalDigitFilter{})
		case config.TokenFilterTrim:
			a.tokenFilters = append(a.tokenFilters, TrimFilter{})
		case config.TokenFilterStemmer:
			a.tokenFilters = append(a.tokenFilters, StemmerFilter{})
		default:
			return nil, fmt.Errorf("unknown token filter %q", name)
		}
	}

	if settings.MinShingleSize > 0 {
		a.shingle = &ShingleFilter{
			Min:            settings.MinShingleSize,
			Max:            settings.MaxShingleSize,
			OutputUnigrams: settings.OutputUnigrams,
		}
	}

	return a, nil
}

// Analyze runs the full pipeline on text: char filters, tokenization, the
// token filter chain, position renumbering, then the shingle stage if
// configured.
//
// Positions in the output index into the post-filter unigram stream: after
// filters that drop tokens (stopwords, emptied trims) have run, the surviving
// unigrams are renumbered 0..m-1, and shingles carry the position of their
// first constituent. Phrase adjacency therefore means adjacency among
// surviving terms.
func (a *Analyzer) Analyze(text string) TokenStream {
	stream := a.analyzeScalar(text)
	if a.shingle != nil {
		stream = a.shingle.Filter(stream)
	}
	return stream
}

// AnalyzeUnigrams runs the pipeline without the shingle stage. This is the
// phrase-analysis path: it yields the unigram terms whose positions must be
// consecutive for a phrase to match.
func (a *Analyzer) AnalyzeUnigrams(text string) TokenStream {
	return a.analyzeScalar(text)
}

func (a *Analyzer) analyzeScalar(text string) TokenStream {
	for _, cf := range a.charFilters {
		text = cf.Filter(text)
	}

	stream := a.tokenizer.Tokenize(text)
	for _, tf := range a.tokenFilters {
		stream = tf.Filter(stream)
	}

	// Renumber so positions are contiguous over the surviving tokens.
	for i := range stream.Tokens {
		stream.Tokens[i].Position = i
	}
	return stream
}
