package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, docs ...*models.Document) *BleveIndex {
	t.Helper()
	idx, err := NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	for _, d := range docs {
		require.NoError(t, idx.Index(context.Background(), d.ID, d))
	}
	return idx
}

func resultIDs(results []*LinkResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestTitleTerms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OrderRouting_v2.pdf", "OrderRouting Order Routing v2 v 2"},
		{"annual-report.2023.pdf", "annual report 2023"},
		{"notes.md", "notes"},
		{"XMLParser Guide.docx", "XMLParser XML Parser Guide"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleTerms(tt.in), tt.in)
	}
}

func TestBleveIndex_SearchMatchesFilename(t *testing.T) {
	idx := newTestIndex(t,
		&models.Document{ID: "a", Title: "PartSource_Manual.pdf", Path: "/docs/PartSource_Manual.pdf"},
		&models.Document{ID: "b", Title: "part-source-notes.pdf"},
		&models.Document{ID: "c", Title: "Shipping.pdf"},
		&models.Document{ID: "d", Title: "Source Control.pdf"},
	)
	ctx := context.Background()

	results, err := idx.Search(ctx, "PartSource", 10, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, resultIDs(results))

	for _, r := range results {
		if r.ID == "a" {
			assert.Equal(t, "PartSource_Manual.pdf", r.Name)
			assert.Equal(t, "/docs/PartSource_Manual.pdf", r.Path)
			assert.Greater(t, r.Score, 0.0)
		}
	}
}

func TestBleveIndex_SearchRequiresAllWords(t *testing.T) {
	idx := newTestIndex(t,
		&models.Document{ID: "both", Title: "order routing guide.pdf"},
		&models.Document{ID: "one", Title: "order history.pdf"},
	)

	results, err := idx.Search(context.Background(), "order routing", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"both"}, resultIDs(results))
}

func TestBleveIndex_SearchExtensionFilter(t *testing.T) {
	idx := newTestIndex(t,
		&models.Document{ID: "pdf", Title: "budget.pdf"},
		&models.Document{ID: "txt", Title: "budget.txt"},
		&models.Document{ID: "upper", Title: "Budget.PDF"},
	)
	ctx := context.Background()

	results, err := idx.Search(ctx, "budget", 10, &SearchOptions{Extensions: []string{"PDF"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pdf", "upper"}, resultIDs(results))

	results, err = idx.Search(ctx, "budget", 10, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestBleveIndex_SearchEmptyQuery(t *testing.T) {
	idx := newTestIndex(t, &models.Document{ID: "x", Title: "x.pdf"})

	for _, q := range []string{"", "   ", "++"} {
		results, err := idx.Search(context.Background(), q, 10, nil)
		require.NoError(t, err)
		assert.Empty(t, results, "query %q", q)
	}
}

func TestBleveIndex_TitleFallsBackToPath(t *testing.T) {
	idx := newTestIndex(t, &models.Document{ID: "p", Path: "/data/Quarterly_Review.pdf"})

	results, err := idx.Search(context.Background(), "quarterly review", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Quarterly_Review.pdf", results[0].Name)
}

func TestBleveIndex_Delete(t *testing.T) {
	idx := newTestIndex(t, &models.Document{ID: "doc1", Title: "onlyindoc1.pdf"})
	ctx := context.Background()

	require.NoError(t, idx.Delete(ctx, "doc1"))

	results, err := idx.Search(ctx, "onlyindoc1", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	n, err := idx.DocCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewBleveIndex_reopensExisting(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "sub", "links")
	ctx := context.Background()

	idx1, err := NewBleveIndex(indexPath)
	require.NoError(t, err)
	require.NoError(t, idx1.Index(ctx, "doc1", &models.Document{Title: "persistent.pdf"}))
	require.NoError(t, idx1.Close())

	_, err = os.Stat(indexPath)
	require.NoError(t, err, "index path should exist")

	idx2, err := NewBleveIndex(indexPath)
	require.NoError(t, err)
	defer func() { _ = idx2.Close() }()

	results, err := idx2.Search(ctx, "persistent", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc1"}, resultIDs(results))
}
