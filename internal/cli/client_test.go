package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperjump/kiji/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(models.SearchResponse{Query: "alpha", Total: 1,
			Results: []*models.SearchResult{{Index: 1, Text: "alpha", Score: 40}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	resp, err := c.Search(context.Background(), &models.SearchQuery{Query: "alpha", Limit: 5, Links: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "alpha", got["query"])
	assert.Equal(t, float64(5), got["limit"])
	assert.Equal(t, false, got["highlight"])
	assert.Equal(t, true, got["links"])
}

func TestClient_statusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"document not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).DeleteDocument(context.Background(), "missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Error(), "document not found")
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"documents":3,"passages":9,"links":3,"corpus_size":9,"disk_usage_bytes":100,` +
			`"config":{"split_mode":"line"}}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL, time.Second).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(9), s.Passages)
	require.NotNil(t, s.DiskUsageBytes)
	assert.Equal(t, int64(100), *s.DiskUsageBytes)
	assert.Equal(t, "line", s.Config.SplitMode)
}

func TestClient_WatchDirectories(t *testing.T) {
	var removed, added string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"directories":["/a","/b"]}`))
		case http.MethodPost:
			var body struct {
				Path string `json:"path"`
				Sync bool   `json:"sync"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.True(t, body.Sync)
			added = body.Path
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			removed = r.URL.Query().Get("path")
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()
	dirs, err := c.WatchDirectories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, dirs)
	require.NoError(t, c.AddWatchDirectory(ctx, "/c d"))
	assert.Equal(t, "/c d", added)
	require.NoError(t, c.RemoveWatchDirectory(ctx, "/c d"))
	assert.Equal(t, "/c d", removed)
}
