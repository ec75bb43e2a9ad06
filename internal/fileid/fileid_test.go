package fileid

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFileDocID(t *testing.T) {
	id1 := FileDocID("/notes/orders.md")
	id2 := FileDocID("/notes/orders.md")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, prefix) {
		t.Errorf("ID should have prefix %q: got %q", prefix, id1)
	}
	if !IsFileDocID(id1) {
		t.Errorf("IsFileDocID(%q) = false", id1)
	}
}

func TestFileDocID_differentPaths(t *testing.T) {
	if FileDocID("/notes/a.md") == FileDocID("/notes/b.md") {
		t.Error("different paths should give different IDs")
	}
}

func TestFileDocID_normalized(t *testing.T) {
	id1 := FileDocID("/notes/guide")
	for _, p := range []string{"/notes/guide/", "/notes/./guide", "/notes/x/../guide"} {
		if got := FileDocID(p); got != id1 {
			t.Errorf("FileDocID(%q) = %q, want %q", p, got, id1)
		}
	}
}

func TestFileDocID_absoluteFromFilepath(t *testing.T) {
	abs, _ := filepath.Abs(".")
	if id := FileDocID(abs); !IsFileDocID(id) {
		t.Errorf("absolute path: got %q", id)
	}
}

func TestIsFileDocID(t *testing.T) {
	for _, id := range []string{"", "file-", "file-abc", "9b2c6f1e-uuid", "note-1"} {
		if IsFileDocID(id) {
			t.Errorf("IsFileDocID(%q) = true", id)
		}
	}
}
