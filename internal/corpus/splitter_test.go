package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBlock, false},
		{"block", ModeBlock, false},
		{"LINE", ModeLine, false},
		{" delimiter ", ModeDelimiter, false},
		{"document", ModeDocument, false},
		{"paragraph", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitter_SplitText(t *testing.T) {
	text := "Order routing\nhandles orders.\n\n  \t\nPartSource module\n\n\n---\nlast   block  "

	tests := []struct {
		name  string
		mode  Mode
		delim string
		want  []string
	}{
		{
			name: "block",
			mode: ModeBlock,
			want: []string{"Order routing\nhandles orders.", "PartSource module", "---\nlast block"},
		},
		{
			name: "line",
			mode: ModeLine,
			want: []string{"Order routing", "handles orders.", "PartSource module", "---", "last block"},
		},
		{
			name: "delimiter",
			mode: ModeDelimiter,
			want: []string{"Order routing\nhandles orders.\n\n\nPartSource module", "last block"},
		},
		{
			name:  "custom delimiter",
			mode:  ModeDelimiter,
			delim: "PartSource module",
			want:  []string{"Order routing\nhandles orders.", "---\nlast block"},
		},
		{
			name: "document",
			mode: ModeDocument,
			want: []string{"Order routing\nhandles orders.\n\n\nPartSource module\n\n\n---\nlast block"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSplitter(tt.mode, tt.delim).SplitText(text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitter_SplitEmpty(t *testing.T) {
	s := NewSplitter(ModeBlock, "")
	assert.Empty(t, s.SplitText("   \n\t\n  "))
	assert.Nil(t, s.Split("d", ""))
}

func TestSplitter_Split(t *testing.T) {
	passages := NewSplitter(ModeLine, "").Split("doc1", "alpha\nbeta\n\ngamma")
	require.Len(t, passages, 3)
	for i, p := range passages {
		assert.Equal(t, "doc1", p.DocumentID)
		assert.Equal(t, i, p.Ordinal)
		assert.Equal(t, PassageID("doc1", i), p.ID)
	}
	assert.Equal(t, "gamma", passages[2].Content)
	assert.Equal(t, "doc1_0002", passages[2].ID)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b\nc d\n\ne", Clean("  a \t b  \n\tc   d \n   \ne"))
	assert.Equal(t, "", Clean("   "))
}
