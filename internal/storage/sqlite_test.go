package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:       "doc1",
		Title:    "Title",
		Path:     "/tmp/Title.txt",
		Content:  "Content",
		Metadata: map[string]interface{}{"k": "v"},
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Title" || got.Content != "Content" || got.Path != "/tmp/Title.txt" {
		t.Errorf("got %+v", got)
	}
	if got.Metadata["k"] != "v" {
		t.Errorf("metadata = %v", got.Metadata)
	}

	doc.Title = "Updated"
	if err := store.UpdateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDocument(ctx, "doc1")
	if got.Title != "Updated" {
		t.Errorf("expected Updated, got %s", got.Title)
	}

	list, err := store.ListDocuments(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 doc, got %d", len(list))
	}

	if err := store.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	_, err = store.GetDocument(ctx, "doc1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteStorage_UpdateMissing(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateDocument(context.Background(), &models.Document{ID: "ghost", Content: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func passages(docID string, texts ...string) []*models.Passage {
	out := make([]*models.Passage, len(texts))
	for i, text := range texts {
		out[i] = &models.Passage{ID: docID + "_" + string(rune('a'+i)), Ordinal: i, Content: text}
	}
	return out
}

func TestSQLiteStorage_SaveDocumentAndPassages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Title: "T", Content: "one\n\ntwo"}
	if err := store.SaveDocument(ctx, doc, passages("d1", "one", "two")); err != nil {
		t.Fatal(err)
	}

	list, err := store.GetPassagesByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Content != "one" || list[1].Content != "two" {
		t.Fatalf("passages = %+v", list)
	}

	got, err := store.GetPassage(ctx, "d1_b")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "two" || got.DocumentID != "d1" || got.Ordinal != 1 {
		t.Errorf("got %+v", got)
	}

	// Saving again replaces passages.
	if err := store.SaveDocument(ctx, doc, passages("d1", "three")); err != nil {
		t.Fatal(err)
	}
	list, _ = store.GetPassagesByDocumentID(ctx, "d1")
	if len(list) != 1 || list[0].Content != "three" {
		t.Errorf("after resave: %+v", list)
	}

	if _, err := store.GetPassage(ctx, "d1_b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for replaced passage, got %v", err)
	}

	if err := store.DeleteDocument(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
	n, _ := store.CountPassages(ctx)
	if n != 0 {
		t.Errorf("expected 0 passages after delete, got %d", n)
	}
}

func TestSQLiteStorage_ListCorpusOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveDocument(ctx, &models.Document{ID: "b", Title: "b.txt", Content: "x"}, passages("b", "b1", "b2")); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveDocument(ctx, &models.Document{ID: "a", Title: "a.txt", Path: "/a.txt", Content: "x"}, passages("a", "a1")); err != nil {
		t.Fatal(err)
	}
	// Re-saving b keeps it first.
	if err := store.SaveDocument(ctx, &models.Document{ID: "b", Title: "b.txt", Content: "y"}, passages("b", "b1", "b2", "b3")); err != nil {
		t.Fatal(err)
	}

	entries, err := store.ListCorpus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Passage.Content)
	}
	want := []string{"b1", "b2", "b3", "a1"}
	if len(got) != len(want) {
		t.Fatalf("corpus = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("corpus = %v, want %v", got, want)
		}
	}
	if entries[3].DocumentTitle != "a.txt" || entries[3].DocumentPath != "/a.txt" {
		t.Errorf("source info = %+v", entries[3])
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.CountDocuments(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountDocuments: %v, %d", err, n)
	}
	_ = store.SaveDocument(ctx, &models.Document{ID: "x", Content: "c"}, passages("x", "p1", "p2"))
	n, _ = store.CountDocuments(ctx)
	if n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
	n, _ = store.CountPassages(ctx)
	if n != 2 {
		t.Errorf("expected 2 passages, got %d", n)
	}
}
