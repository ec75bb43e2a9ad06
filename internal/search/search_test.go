package search

import (
	"testing"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/keyword"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCollectLinks(t *testing.T) {
	hits := []*keyword.LinkResult{
		{ID: "a", Name: "A.pdf", Path: "/docs/A.pdf", Score: 2},
		nil,
		{ID: "a", Name: "A.pdf", Score: 1},
		{ID: "b", Name: "B.pdf", Score: 0.5},
		{ID: "c", Name: "C.pdf", Score: 0.1},
	}

	links := CollectLinks(hits, 2)
	assert.Equal(t, []models.DocumentLink{
		{ID: "a", Title: "A.pdf", Path: "/docs/A.pdf", Score: 2},
		{ID: "b", Title: "B.pdf", Score: 0.5},
	}, links)

	assert.Len(t, CollectLinks(hits, 0), 3)
	assert.Nil(t, CollectLinks(nil, 5))
}

func TestProcessQuery(t *testing.T) {
	q := &models.SearchQuery{Query: "x", Limit: 500, Offset: -3}
	assert.NoError(t, ProcessQuery(q, &config.SearchConfig{DefaultLimit: 5, MaxLimit: 20}))
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset)

	q = &models.SearchQuery{Query: "x"}
	assert.NoError(t, ProcessQuery(q, nil))
	assert.Equal(t, models.DefaultLimit, q.Limit)

	assert.ErrorIs(t, ProcessQuery(&models.SearchQuery{}, nil), models.ErrEmptyQuery)
}

func TestWrapFor(t *testing.T) {
	assert.Equal(t, "**x**", WrapFor(nil)("x"))
	assert.Equal(t, "**x**", WrapFor(&config.HighlightConfig{})("x"))
	assert.Equal(t, "[x]", WrapFor(&config.HighlightConfig{Open: "[", Close: "]"})("x"))
}
