package ranking

import (
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{
			name:  "longest candidate wins",
			text:  "PartSource module",
			query: "PartSource",
			want:  "**PartSource** module",
		},
		{
			name:  "tokens highlighted separately when apart",
			text:  "Part of the Source",
			query: "PartSource",
			want:  "**Part** of the **Source**",
		},
		{
			name:  "case insensitive keeps original casing",
			text:  "XML parser and xml PARSER",
			query: "XMLParser",
			want:  "**XML** **parser** and **xml** **PARSER**",
		},
		{
			name:  "multi word query",
			text:  "order routing and routing orders",
			query: "order routing",
			want:  "**order routing** and **routing** **order**s",
		},
		{
			name:  "no match",
			text:  "nothing here",
			query: "absent",
			want:  "nothing here",
		},
		{
			name:  "empty query",
			text:  "some text",
			query: "",
			want:  "some text",
		},
		{
			name:  "multibyte text",
			text:  "Überblick über Café",
			query: "café",
			want:  "Überblick über **Café**",
		},
		{
			name:  "folding that changes byte length",
			text:  "İstanbul trip",
			query: "istanbul",
			want:  "**İstanbul** trip",
		},
		{
			name:  "upper case dotted query",
			text:  "İstanbul trip",
			query: "İSTANBUL",
			want:  "**İstanbul** trip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.query, nil); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
			}
		})
	}
}

func TestHighlight_NonDestructive(t *testing.T) {
	texts := []string{
		"The PartSource module handles orders.",
		"Part, Source; part-source and PARTSOURCE",
		"ünïcödé Part text",
		"",
	}

	wrap := Tags("\x00", "\x01")
	for _, text := range texts {
		out := Highlight(text, "PartSource", wrap)
		stripped := strings.NewReplacer("\x00", "", "\x01", "").Replace(out)
		if stripped != text {
			t.Errorf("stripping markers from %q gave %q", out, stripped)
		}
	}
}

func TestHighlight_CustomTags(t *testing.T) {
	got := Highlight("find the needle", "needle", Tags("<mark>", "</mark>"))
	if got != "find the <mark>needle</mark>" {
		t.Errorf("got %q", got)
	}
}

func TestFindSpans(t *testing.T) {
	spans := FindSpans("PartSource and Part", "PartSource")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Start != 0 || spans[0].End != 10 || spans[0].Candidate != "partsource" {
		t.Errorf("first span = %+v", spans[0])
	}
	if spans[1].Start != 15 || spans[1].End != 19 || spans[1].Candidate != "part" {
		t.Errorf("second span = %+v", spans[1])
	}

	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			t.Errorf("spans overlap: %+v and %+v", spans[i-1], spans[i])
		}
	}
}
