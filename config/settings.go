// Package config provides configuration structures for the search engine.
// It defines index settings, field mappings, and the analyzer configuration
// shared by the indexing and query paths.
package config

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a document field. The type decides how a
// raw field value is turned into index terms: text runs the full analysis
// chain, keyword indexes the value verbatim as a single term, and date
// canonicalizes to epoch milliseconds.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeKeyword FieldType = "keyword"
	FieldTypeDate    FieldType = "date"
)

// FieldMapping declares one document field and its type.
type FieldMapping struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Known analysis component names. These mirror the stage names accepted in
// AnalyzerSettings; an unknown name is a settings validation error.
const (
	CharFilterHTMLStrip = "html_strip"
	CharFilterMapping   = "mapping"

	TokenizerStandard = "standard"

	TokenFilterLowercase    = "lowercase"
	TokenFilterStop         = "stop"
	TokenFilterApostrophe   = "apostrophe"
	TokenFilterDecimalDigit = "decimal_digit"
	TokenFilterTrim         = "trim"
	TokenFilterStemmer      = "stemmer"
)

// AnalyzerSettings configures the analysis pipeline applied to text fields.
// The same configuration is used at index time and query time; diverging the
// two makes postings and query terms incomparable, which the engine detects
// via the fingerprint captured when documents are indexed.
//
// IMPORTANT: TokenFilters order matters. Filters run strictly in the
// configured order, and reordering changes the indexed terms (stemming before
// shingling produces different n-grams than the reverse).
type AnalyzerSettings struct {
	CharFilters  []string `json:"char_filters"`  // e.g. ["html_strip"]
	// CharFilterMappings configures the "mapping" char filter as "old=>new"
	// pairs; ignored unless "mapping" appears in CharFilters.
	CharFilterMappings []string `json:"char_filter_mappings,omitempty"`
	Tokenizer    string   `json:"tokenizer"`     // only "standard" is supported
	TokenFilters []string `json:"token_filters"` // ordered, e.g. ["lowercase", "stop", "stemmer"]
	Stopwords    []string `json:"stopwords,omitempty"` // overrides the default English set when non-empty

	// Shingle stage. Shingles are built from the filtered token stream
	// (adjacent surviving tokens after stopword removal), not from original
	// adjacency.
	MinShingleSize int  `json:"min_shingle_size"` // 0 disables shingling
	MaxShingleSize int  `json:"max_shingle_size"`
	OutputUnigrams bool `json:"output_unigrams"`
}

// IndexSettings contains all configuration options for a search index.
type IndexSettings struct {
	Name     string           `json:"name"`     // Unique name for the index
	Fields   []FieldMapping   `json:"fields"`   // Declared fields; ingest rejects undeclared fields
	Analyzer AnalyzerSettings `json:"analyzer"` // Analysis pipeline for text fields

	// AnalyzerFingerprint is the canonical form of the analyzer configuration
	// that built the current index contents. Set by the engine at creation and
	// after each full reindex; not meant to be supplied by callers.
	AnalyzerFingerprint string `json:"analyzer_fingerprint,omitempty"`
}

// DefaultAnalyzerSettings returns the analysis chain used for news content:
// HTML stripping, standard tokenization, then lowercase, stop, apostrophe,
// decimal_digit, trim, an English stemmer, and 2..3 shingles with unigrams.
func DefaultAnalyzerSettings() AnalyzerSettings {
	return AnalyzerSettings{
		CharFilters: []string{CharFilterHTMLStrip},
		Tokenizer:   TokenizerStandard,
		TokenFilters: []string{
			TokenFilterLowercase,
			TokenFilterStop,
			TokenFilterApostrophe,
			TokenFilterDecimalDigit,
			TokenFilterTrim,
			TokenFilterStemmer,
		},
		MinShingleSize: 2,
		MaxShingleSize: 3,
		OutputUnigrams: true,
	}
}

// DefaultNewsFields returns the field mappings of the news corpus the engine
// was built for.
func DefaultNewsFields() []FieldMapping {
	return []FieldMapping{
		{Name: "uuid", Type: FieldTypeKeyword},
		{Name: "title", Type: FieldTypeText},
		{Name: "text", Type: FieldTypeText},
		{Name: "author", Type: FieldTypeKeyword},
		{Name: "published", Type: FieldTypeDate},
		{Name: "language", Type: FieldTypeKeyword},
		{Name: "sentiment", Type: FieldTypeKeyword},
		{Name: "categories", Type: FieldTypeKeyword},
		{Name: "url", Type: FieldTypeKeyword},
	}
}

// ApplyDefaults applies default values to the index settings.
func (settings *IndexSettings) ApplyDefaults() {
	if len(settings.Fields) == 0 {
		settings.Fields = DefaultNewsFields()
	}
	if settings.Analyzer.Tokenizer == "" {
		settings.Analyzer.Tokenizer = TokenizerStandard
	}
	if settings.Analyzer.TokenFilters == nil && settings.Analyzer.CharFilters == nil {
		stopwords := settings.Analyzer.Stopwords
		shingleConfigured := settings.Analyzer.MinShingleSize != 0
		min, max, unigrams := settings.Analyzer.MinShingleSize, settings.Analyzer.MaxShingleSize, settings.Analyzer.OutputUnigrams
		settings.Analyzer = DefaultAnalyzerSettings()
		settings.Analyzer.Stopwords = stopwords
		if shingleConfigured {
			settings.Analyzer.MinShingleSize = min
			settings.Analyzer.MaxShingleSize = max
			settings.Analyzer.OutputUnigrams = unigrams
		}
	}
	if settings.Analyzer.MinShingleSize > 0 && settings.Analyzer.MaxShingleSize < settings.Analyzer.MinShingleSize {
		settings.Analyzer.MaxShingleSize = settings.Analyzer.MinShingleSize
	}
}

// Validate checks the settings for structural problems and returns a list of
// human-readable conflicts. An empty list means the settings are usable.
func (settings *IndexSettings) Validate() []string {
	var conflicts []string

	if strings.TrimSpace(settings.Name) == "" {
		conflicts = append(conflicts, "index name cannot be empty or whitespace-only")
	}

	seen := make(map[string]bool)
	for _, field := range settings.Fields {
		if strings.TrimSpace(field.Name) == "" {
			conflicts = append(conflicts, "field name cannot be empty or whitespace-only")
			continue
		}
		if seen[field.Name] {
			conflicts = append(conflicts, "duplicate field '"+field.Name+"' in fields")
		}
		seen[field.Name] = true

		switch field.Type {
		case FieldTypeText, FieldTypeKeyword, FieldTypeDate:
		default:
			conflicts = append(conflicts, fmt.Sprintf("field '%s' has undeclared type '%s' (must be text, keyword, or date)", field.Name, field.Type))
		}
	}

	conflicts = append(conflicts, settings.Analyzer.validate()...)
	return conflicts
}

func (a *AnalyzerSettings) validate() []string {
	var conflicts []string

	for _, name := range a.CharFilters {
		switch name {
		case CharFilterHTMLStrip:
		case CharFilterMapping:
			for _, pair := range a.CharFilterMappings {
				before, _, found := strings.Cut(pair, "=>")
				if !found || before == "" {
					conflicts = append(conflicts, fmt.Sprintf("malformed char filter mapping '%s' (want \"old=>new\")", pair))
				}
			}
		default:
			conflicts = append(conflicts, "unknown char filter '"+name+"'")
		}
	}

	if a.Tokenizer != "" && a.Tokenizer != TokenizerStandard {
		conflicts = append(conflicts, "unknown tokenizer '"+a.Tokenizer+"'")
	}

	known := map[string]bool{
		TokenFilterLowercase:    true,
		TokenFilterStop:         true,
		TokenFilterApostrophe:   true,
		TokenFilterDecimalDigit: true,
		TokenFilterTrim:         true,
		TokenFilterStemmer:      true,
	}
	for _, name := range a.TokenFilters {
		if !known[name] {
			conflicts = append(conflicts, "unknown token filter '"+name+"'")
		}
	}

	if a.MinShingleSize < 0 {
		conflicts = append(conflicts, "min_shingle_size cannot be negative")
	}
	if a.MinShingleSize > 0 {
		if a.MinShingleSize < 2 {
			conflicts = append(conflicts, "min_shingle_size must be at least 2 when shingling is enabled")
		}
		if a.MaxShingleSize < a.MinShingleSize {
			conflicts = append(conflicts, "max_shingle_size cannot be smaller than min_shingle_size")
		}
	}

	return conflicts
}

// FieldType returns the declared type of a field and whether the field is
// declared at all.
func (settings *IndexSettings) FieldType(name string) (FieldType, bool) {
	for _, field := range settings.Fields {
		if field.Name == name {
			return field.Type, true
		}
	}
	return "", false
}

// TextFields returns the names of all declared text fields, in declaration
// order. These are the default search targets.
func (settings *IndexSettings) TextFields() []string {
	var names []string
	for _, field := range settings.Fields {
		if field.Type == FieldTypeText {
			names = append(names, field.Name)
		}
	}
	return names
}

// Fingerprint returns a canonical string for the analyzer configuration. Two
// configurations with the same fingerprint produce identical terms for
// identical input, so comparing fingerprints detects index-time/query-time
// analyzer divergence.
func (a *AnalyzerSettings) Fingerprint() string {
	var b strings.Builder
	b.WriteString("char=")
	b.WriteString(strings.Join(a.CharFilters, ","))
	if len(a.CharFilterMappings) > 0 {
		b.WriteString(";map=")
		b.WriteString(strings.Join(a.CharFilterMappings, ","))
	}
	b.WriteString(";tok=")
	b.WriteString(a.Tokenizer)
	b.WriteString(";filters=")
	b.WriteString(strings.Join(a.TokenFilters, ","))
	b.WriteString(";stop=")
	b.WriteString(strings.Join(a.Stopwords, ","))
	fmt.Fprintf(&b, ";shingle=%d..%d", a.MinShingleSize, a.MaxShingleSize)
	if a.OutputUnigrams {
		b.WriteString("+unigrams")
	}
	return b.String()
}
