package analysis

import (
	"reflect"
	"testing"

	"github.com/newsearch/news-search-engine/config"
)

func TestStandardTokenizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		terms []string
	}{
		{"simple words", "machine learning", []string{"machine", "learning"}},
		{"punctuation is a boundary", "U.S.-based, fast-growing", []string{"U", "S", "based", "fast", "growing"}},
		{"digits are kept", "GPT 4 beats GPT3", []string{"GPT", "4", "beats", "GPT3"}},
		{"apostrophe splits", "don't", []string{"don", "t"}},
		{"unicode letters", "café au lait", []string{"café", "au", "lait"}},
		{"empty input", "", nil},
		{"only separators", " ,.! ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := StandardTokenizer{}.Tokenize(tt.input)
			got := stream.Terms()
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.terms) {
				t.Errorf("Tokenize(%q) terms = %v, want %v", tt.input, got, tt.terms)
			}
		})
	}
}

func TestStandardTokenizerOffsetsAndPositions(t *testing.T) {
	stream := StandardTokenizer{}.Tokenize("to be, or not")

	want := []Token{
		{Term: "to", Position: 0, StartOffset: 0},
		{Term: "be", Position: 1, StartOffset: 3},
		{Term: "or", Position: 2, StartOffset: 7},
		{Term: "not", Position: 3, StartOffset: 10},
	}
	if !reflect.DeepEqual(stream.Tokens, want) {
		t.Errorf("tokens = %+v, want %+v", stream.Tokens, want)
	}
}

func TestHTMLStripCharFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "no markup here", "no markup here"},
		{"tags removed", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities decoded", "AT&amp;T expands", "AT&T expands"},
		{"script content dropped", "<p>news</p><script>var x = 1;</script>", "news"},
		{"style content dropped", "<style>p{color:red}</style><p>visible</p>", "visible"},
		{"tags separate words", "one<br>two", "one two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (HTMLStripCharFilter{}).Filter(tt.input); got != tt.want {
				t.Errorf("Filter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStopFilterDefaultSet(t *testing.T) {
	stream := StandardTokenizer{}.Tokenize("the cat and the hat")
	stream = LowercaseFilter{}.Filter(stream)
	stream = NewStopFilter(nil).Filter(stream)

	want := []string{"cat", "hat"}
	if got := stream.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestStopFilterCustomSetOverridesDefault(t *testing.T) {
	stream := StandardTokenizer{}.Tokenize("the cat sat")
	stream = LowercaseFilter{}.Filter(stream)
	stream = NewStopFilter([]string{"cat"}).Filter(stream)

	// "the" survives: a custom set replaces the default English set.
	want := []string{"the", "sat"}
	if got := stream.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestIdentityFilters(t *testing.T) {
	input := NewTokenStream([]Token{
		{Term: "o'neill", Position: 0},
		{Term: "123", Position: 1},
	})

	if got := (ApostropheFilter{}).Filter(input); !reflect.DeepEqual(got, input) {
		t.Errorf("ApostropheFilter changed the stream: %+v", got)
	}
	if got := (DecimalDigitFilter{}).Filter(input); !reflect.DeepEqual(got, input) {
		t.Errorf("DecimalDigitFilter changed the stream: %+v", got)
	}
}

func TestTrimFilterDropsEmptiedTokens(t *testing.T) {
	input := NewTokenStream([]Token{
		{Term: "  padded  ", Position: 0},
		{Term: "   ", Position: 1},
		{Term: "clean", Position: 2},
	})
	got := (TrimFilter{}).Filter(input)

	want := []string{"padded", "clean"}
	if !reflect.DeepEqual(got.Terms(), want) {
		t.Errorf("terms = %v, want %v", got.Terms(), want)
	}
}

func TestStemmerFilter(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"learning", "learn"},
		{"running", "run"},
		{"cats", "cat"},
		{"declines", "declin"},
	}

	for _, tt := range tests {
		stream := (StemmerFilter{}).Filter(NewTokenStream([]Token{{Term: tt.input}}))
		if got := stream.Tokens[0].Term; got != tt.want {
			t.Errorf("stem(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShingleFilterTokenCount(t *testing.T) {
	// For N unigrams with min=2, max=3 and unigrams kept, the output holds
	// N + max(0,N-1) + max(0,N-2) tokens.
	filter := ShingleFilter{Min: 2, Max: 3, OutputUnigrams: true}

	for _, n := range []int{0, 1, 2, 3, 5, 8} {
		tokens := make([]Token, n)
		for i := range tokens {
			tokens[i] = Token{Term: string(rune('a' + i)), Position: i}
		}
		got := filter.Filter(NewTokenStream(tokens)).Size()

		want := n
		if n >= 2 {
			want += n - 1
		}
		if n >= 3 {
			want += n - 2
		}
		if got != want {
			t.Errorf("N=%d: size = %d, want %d", n, got, want)
		}
	}
}

func TestShingleFilterOutput(t *testing.T) {
	filter := ShingleFilter{Min: 2, Max: 3, OutputUnigrams: true}
	stream := NewTokenStream([]Token{
		{Term: "machine", Position: 0},
		{Term: "learning", Position: 1},
		{Term: "improves", Position: 2},
	})

	got := filter.Filter(stream).Terms()
	want := []string{
		"machine", "machine learning", "machine learning improves",
		"learning", "learning improves",
		"improves",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestShingleCarriesFirstTokenPosition(t *testing.T) {
	filter := ShingleFilter{Min: 2, Max: 2, OutputUnigrams: false}
	stream := NewTokenStream([]Token{
		{Term: "deep", Position: 0, StartOffset: 10},
		{Term: "learning", Position: 1, StartOffset: 15},
	})

	got := filter.Filter(stream)
	if got.Size() != 1 {
		t.Fatalf("size = %d, want 1", got.Size())
	}
	shingle := got.Tokens[0]
	if shingle.Term != "deep learning" || shingle.Position != 0 || shingle.StartOffset != 10 {
		t.Errorf("shingle = %+v, want {deep learning 0 10}", shingle)
	}
}

func newDefaultAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	analyzer, err := NewAnalyzer(config.DefaultAnalyzerSettings())
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return analyzer
}

func TestAnalyzeFullPipeline(t *testing.T) {
	analyzer := newDefaultAnalyzer(t)

	got := analyzer.Analyze("Machine learning improves weather forecasts").Terms()
	want := []string{
		"machin", "machin learn", "machin learn improv",
		"learn", "learn improv", "learn improv weather",
		"improv", "improv weather", "improv weather forecast",
		"weather", "weather forecast",
		"forecast",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestAnalyzeShinglesSpanStopwordGaps(t *testing.T) {
	analyzer := newDefaultAnalyzer(t)

	// "and" is removed before shingling, so the bigram bridges the gap.
	got := analyzer.Analyze("machine and learning").Terms()
	want := []string{"machin", "machin learn", "learn"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestAnalyzeRenumbersPositionsAfterStopRemoval(t *testing.T) {
	analyzer := newDefaultAnalyzer(t)

	stream := analyzer.AnalyzeUnigrams("the quick and the dead")
	want := []Token{
		{Term: "quick", Position: 0, StartOffset: 4},
		{Term: "dead", Position: 1, StartOffset: 18},
	}
	if !reflect.DeepEqual(stream.Tokens, want) {
		t.Errorf("tokens = %+v, want %+v", stream.Tokens, want)
	}
}

func TestAnalyzeUnigramsSkipsShingleStage(t *testing.T) {
	analyzer := newDefaultAnalyzer(t)

	got := analyzer.AnalyzeUnigrams("deep learning declines").Terms()
	want := []string{"deep", "learn", "declin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestAnalyzeStripsHTMLBeforeTokenizing(t *testing.T) {
	analyzer := newDefaultAnalyzer(t)

	got := analyzer.AnalyzeUnigrams("<p>Breaking <b>news</b></p><script>x()</script>").Terms()
	want := []string{"break", "news"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("terms = %v, want %v", got, want)
	}
}

func TestNewAnalyzerRejectsUnknownComponents(t *testing.T) {
	tests := []struct {
		name     string
		settings config.AnalyzerSettings
	}{
		{"unknown char filter", config.AnalyzerSettings{CharFilters: []string{"regex_strip"}}},
		{"unknown tokenizer", config.AnalyzerSettings{Tokenizer: "whitespace"}},
		{"unknown token filter", config.AnalyzerSettings{TokenFilters: []string{"soundex"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tt.settings); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMappingCharFilter(t *testing.T) {
	filter, err := NewMappingCharFilter([]string{"&=> and ", "C++=>cplusplus"})
	if err != nil {
		t.Fatalf("NewMappingCharFilter: %v", err)
	}

	if got := filter.Filter("AT&T ships C++ toolchain"); got != "AT and T ships cplusplus toolchain" {
		t.Errorf("Filter = %q", got)
	}

	if _, err := NewMappingCharFilter([]string{"no-arrow"}); err == nil {
		t.Error("malformed pair should be rejected")
	}
	if _, err := NewMappingCharFilter([]string{"=>x"}); err == nil {
		t.Error("empty left side should be rejected")
	}
}
