package ranking

import (
	"reflect"
	"testing"
)

func TestSplitCamelCase(t *testing.T) {
	tests := []struct {
		word string
		want []string
	}{
		{"PartSource", []string{"Part", "Source"}},
		{"XMLParser", []string{"XML", "Parser"}},
		{"getUserID", []string{"get", "User", "ID"}},
		{"HTTP", []string{"HTTP"}},
		{"lowercase", []string{"lowercase"}},
		{"v2Release", []string{"v", "2", "Release"}},
		{"Version10Notes", []string{"Version", "10", "Notes"}},
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"part-source", []string{"part", "source"}},
		{"ÉtéParis", []string{"Été", "Paris"}},
		{"---", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got := SplitCamelCase(tt.word)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCamelCase(%q) = %q, want %q", tt.word, got, tt.want)
			}
		})
	}
}

func TestLooseNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Part Source", "partsource"},
		{"Part-Source", "partsource"},
		{"XML_Parser v2.0", "xmlparserv20"},
		{"café", "caf"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := LooseNormalize(tt.in); got != tt.want {
			t.Errorf("LooseNormalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryAnalyzer_Analyze(t *testing.T) {
	qa := NewQueryAnalyzer()

	tests := []struct {
		name           string
		query          string
		wantFolded     string
		wantLoose      string
		wantTokens     []string
		wantCandidates []string
	}{
		{
			name:           "camel case word",
			query:          "PartSource",
			wantFolded:     "partsource",
			wantLoose:      "partsource",
			wantTokens:     []string{"Part", "Source"},
			wantCandidates: []string{"partsource", "part", "source"},
		},
		{
			name:           "acronym prefix",
			query:          "XMLParser",
			wantFolded:     "xmlparser",
			wantLoose:      "xmlparser",
			wantTokens:     []string{"XML", "Parser"},
			wantCandidates: []string{"xmlparser", "xml", "parser"},
		},
		{
			name:           "multiple words",
			query:          "Order Routing",
			wantFolded:     "order routing",
			wantLoose:      "orderrouting",
			wantTokens:     []string{"Order", "Routing"},
			wantCandidates: []string{"order routing", "orderrouting", "order", "routing"},
		},
		{
			name:           "punctuation only word is kept whole",
			query:          "C++ ++",
			wantFolded:     "c++ ++",
			wantLoose:      "c",
			wantTokens:     []string{"C", "++"},
			wantCandidates: []string{"c++ ++", "c", "++"},
		},
		{
			name:           "empty query",
			query:          "",
			wantFolded:     "",
			wantLoose:      "",
			wantTokens:     []string{""},
			wantCandidates: []string{""},
		},
		{
			name:           "whitespace only",
			query:          "   ",
			wantFolded:     "   ",
			wantLoose:      "",
			wantTokens:     []string{"   "},
			wantCandidates: []string{"   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qa.Analyze(tt.query)
			if got.Original != tt.query {
				t.Errorf("Original = %q, want %q", got.Original, tt.query)
			}
			if got.Folded != tt.wantFolded {
				t.Errorf("Folded = %q, want %q", got.Folded, tt.wantFolded)
			}
			if got.Loose != tt.wantLoose {
				t.Errorf("Loose = %q, want %q", got.Loose, tt.wantLoose)
			}
			if !reflect.DeepEqual(got.Tokens, tt.wantTokens) {
				t.Errorf("Tokens = %q, want %q", got.Tokens, tt.wantTokens)
			}
			if !reflect.DeepEqual(got.Candidates, tt.wantCandidates) {
				t.Errorf("Candidates = %q, want %q", got.Candidates, tt.wantCandidates)
			}
		})
	}
}

func TestAnalyzedQuery_HasCandidate(t *testing.T) {
	q := Analyze("getUserID")

	for _, c := range []string{"getuserid", "GET", "user", "Id"} {
		if !q.HasCandidate(c) {
			t.Errorf("expected %q to be a candidate of %q", c, q.Original)
		}
	}
	if q.HasCandidate("getuser") {
		t.Error("getuser should not be a candidate")
	}
}

func TestCountOccurrences(t *testing.T) {
	tests := []struct {
		term string
		text string
		want int
	}{
		{"part", "Part and PART and part", 3},
		{"aa", "aaaa", 2},
		{"", "aaa", 0},
		{"zzz", "aaa", 0},
	}

	for _, tt := range tests {
		if got := CountOccurrences(tt.term, tt.text); got != tt.want {
			t.Errorf("CountOccurrences(%q, %q) = %d, want %d", tt.term, tt.text, got, tt.want)
		}
	}
}
