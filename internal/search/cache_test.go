package search

import (
	"context"
	"testing"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCache_GetPut(t *testing.T) {
	c := newRankCache(2)
	_, ok := c.get(1, "a")
	assert.False(t, ok)

	c.put(1, "a", []ranking.ScoredResult{{Index: 1}})
	got, ok := c.get(1, "a")
	require.True(t, ok)
	assert.Equal(t, 1, got[0].Index)

	_, ok = c.get(2, "a")
	assert.False(t, ok, "a newer generation must miss")

	c.put(1, "b", nil)
	c.get(1, "a")
	c.put(1, "c", nil) // evicts b, the least recently used
	_, ok = c.get(1, "b")
	assert.False(t, ok)
	_, ok = c.get(1, "a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())

	c.purge()
	assert.Equal(t, 0, c.len())
}

func TestRankCache_disabled(t *testing.T) {
	c := newRankCache(0)
	assert.Nil(t, c)
	c.put(1, "a", nil)
	_, ok := c.get(1, "a")
	assert.False(t, ok)
	c.purge()
	assert.Equal(t, 0, c.len())
}

func TestEngine_Search_cachesRanking(t *testing.T) {
	env := newTestEnv(t, &config.SearchConfig{DefaultLimit: 1, CacheSize: 8})
	env.add(t, "d1", "", "alpha one\n\nalpha two")
	ctx := context.Background()

	first, err := env.engine.Search(ctx, &models.SearchQuery{Query: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.engine.ranked.len())

	second, err := env.engine.Search(ctx, &models.SearchQuery{Query: "alpha", Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, env.engine.ranked.len())
	assert.Equal(t, 2, first.Total)
	assert.NotEqual(t, first.Results[0].Index, second.Results[0].Index)

	env.add(t, "d2", "", "alpha three")
	assert.Equal(t, 0, env.engine.ranked.len(), "indexing invalidates cached rankings")
	third, err := env.engine.Search(ctx, &models.SearchQuery{Query: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Total)
}
