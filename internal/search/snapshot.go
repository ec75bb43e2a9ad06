package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/storage"
	"go.uber.org/zap"
)

// snapshot is an immutable copy of the corpus. texts[i] is corpus position i+1.
type snapshot struct {
	texts      []string
	entries    []storage.CorpusEntry
	generation uint64
	loadedAt   time.Time
}

func (s *snapshot) source(index int) *models.SourceInfo {
	if index < 1 || index > len(s.entries) {
		return nil
	}
	e := s.entries[index-1]
	return &models.SourceInfo{
		DocumentID: e.Passage.DocumentID,
		Title:      e.DocumentTitle,
		Path:       e.DocumentPath,
		Ordinal:    e.Passage.Ordinal,
	}
}

// snapshot returns the current corpus, reloading it when Invalidate was called since the
// last load. Concurrent callers of the same generation share one reload, which runs
// detached from any single caller's cancellation; a caller that gives up stops waiting
// without failing the others.
func (e *Engine) snapshot(ctx context.Context) (*snapshot, error) {
	e.mu.RLock()
	snap, gen := e.snap, e.generation
	e.mu.RUnlock()
	if snap != nil && snap.generation == gen {
		return snap, nil
	}

	ch := e.loads.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return e.reload(context.WithoutCancel(ctx), gen)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}

func (e *Engine) reload(ctx context.Context, gen uint64) (*snapshot, error) {
	entries, err := e.storage.ListCorpus(ctx)
	if err != nil {
		// Searches still answer, with no matches, while storage is unreadable.
		if e.logger != nil {
			e.logger.Error("corpus load failed", zap.Error(err))
		}
		return &snapshot{generation: gen}, nil
	}

	snap := &snapshot{
		texts:      make([]string, len(entries)),
		entries:    entries,
		generation: gen,
		loadedAt:   time.Now(),
	}
	for i, entry := range entries {
		snap.texts[i] = entry.Passage.Content
	}

	e.mu.Lock()
	if e.snap == nil || e.snap.generation <= gen {
		e.snap = snap
	}
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Debug("corpus loaded", zap.Int("passages", len(snap.texts)), zap.Uint64("generation", gen))
	}
	return snap, nil
}

// Reload loads the corpus from storage now instead of on the next search.
func (e *Engine) Reload(ctx context.Context) error {
	e.Invalidate()
	if _, err := e.snapshot(ctx); err != nil {
		return fmt.Errorf("reload corpus: %w", err)
	}
	return nil
}

// CorpusSize returns the number of passages in the loaded snapshot.
func (e *Engine) CorpusSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return 0
	}
	return len(e.snap.texts)
}
