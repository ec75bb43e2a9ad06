// Package search runs ranked passage search over the stored corpus.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/keyword"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/ranking"
	"github.com/hyperjump/kiji/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Engine ranks the passages of the stored corpus and attaches document links.
type Engine struct {
	storage storage.Storage
	links   keyword.LinkIndex
	ranker  *ranking.Ranker
	config  *config.SearchConfig
	wrap    ranking.WrapFunc
	logger  *zap.Logger
	ranked  *rankCache

	mu         sync.RWMutex
	snap       *snapshot
	generation uint64
	loads      singleflight.Group
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for corpus reloads and link search failures.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithHighlight sets the markers wrapped around matches when a query asks for highlighting.
func WithHighlight(cfg *config.HighlightConfig) EngineOption {
	return func(e *Engine) { e.wrap = WrapFor(cfg) }
}

// NewEngine creates a search engine with the given dependencies.
// links may be nil, in which case responses carry no document links.
func NewEngine(
	store storage.Storage,
	links keyword.LinkIndex,
	ranker *ranking.Ranker,
	cfg *config.SearchConfig,
	opts ...EngineOption,
) *Engine {
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	e := &Engine{
		storage: store,
		links:   links,
		ranker:  ranker,
		config:  cfg,
		wrap:    ranking.MarkdownBold,
		ranked:  newRankCache(cfg.CacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Invalidate marks the corpus snapshot stale. The next search reloads it from storage.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.generation++
	e.mu.Unlock()
	e.ranked.purge()
}

// Search validates query, ranks the corpus and returns one page of results.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := ProcessQuery(query, e.config); err != nil {
		return nil, err
	}

	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	scored := e.rank(snap, query.Query)

	start := query.Offset
	end := query.Offset + query.Limit
	if start > len(scored) {
		start = len(scored)
	}
	if end > len(scored) {
		end = len(scored)
	}
	paged := scored[start:end]

	response := &models.SearchResponse{
		Query:   query.Query,
		Results: make([]*models.SearchResult, 0, len(paged)),
		Total:   len(scored),
	}
	for i, r := range paged {
		result := &models.SearchResult{
			Index:         r.Index,
			Text:          r.Text,
			Score:         r.Score,
			Frequency:     r.Frequency,
			EarlyBoost:    r.EarlyBoost,
			LengthPenalty: r.LengthPenalty,
			Rank:          start + i + 1,
			Source:        snap.source(r.Index),
		}
		if query.Highlight {
			result.Highlighted = ranking.Highlight(r.Text, query.Query, e.wrap)
		}
		response.Results = append(response.Results, result)
	}

	if query.Links {
		response.Documents = e.documentLinks(ctx, query.Query)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

func (e *Engine) rank(snap *snapshot, query string) []ranking.ScoredResult {
	if scored, ok := e.ranked.get(snap.generation, query); ok {
		return scored
	}
	scored := e.ranker.Rank(snap.texts, query)
	// A snapshot from a failed load is never stored, so its empty ranking is not either.
	if !snap.loadedAt.IsZero() {
		e.ranked.put(snap.generation, query, scored)
	}
	return scored
}

// Passage returns the passage at the 1-based corpus position index.
func (e *Engine) Passage(ctx context.Context, index int) (*models.SearchResult, error) {
	snap, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if index < 1 || index > len(snap.texts) {
		return nil, fmt.Errorf("passage %d: %w", index, storage.ErrNotFound)
	}
	return &models.SearchResult{
		Index:  index,
		Text:   snap.texts[index-1],
		Source: snap.source(index),
	}, nil
}

// Stats describes the corpus the engine searches.
type Stats struct {
	Documents int64     `json:"documents"`
	Passages  int64     `json:"passages"`
	Links     uint64    `json:"links"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Stats counts stored documents and passages and reports when the snapshot was loaded.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	docs, err := e.storage.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	passages, err := e.storage.CountPassages(ctx)
	if err != nil {
		return nil, fmt.Errorf("count passages: %w", err)
	}
	stats := &Stats{Documents: docs, Passages: passages}
	if e.links != nil {
		if n, err := e.links.DocCount(); err == nil {
			stats.Links = n
		}
	}
	e.mu.RLock()
	if e.snap != nil {
		stats.LoadedAt = e.snap.loadedAt
	}
	e.mu.RUnlock()
	return stats, nil
}

func (e *Engine) documentLinks(ctx context.Context, query string) []models.DocumentLink {
	if e.links == nil {
		return nil
	}
	limit := e.config.MaxLinks
	if limit <= 0 {
		limit = config.DefaultMaxLinks
	}
	hits, err := e.links.Search(ctx, query, limit, &keyword.SearchOptions{Extensions: e.config.LinkExtensions})
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("document link search failed", zap.String("query", query), zap.Error(err))
		}
		return nil
	}
	return CollectLinks(hits, limit)
}
