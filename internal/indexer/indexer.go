// Package indexer turns files and raw text into stored documents and passages.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/kiji/internal/corpus"
	"github.com/hyperjump/kiji/internal/extract"
	"github.com/hyperjump/kiji/internal/fileid"
	"github.com/hyperjump/kiji/internal/keyword"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// ErrExtensionNotAllowed is returned by IndexFile for files outside the allowed extensions.
var ErrExtensionNotAllowed = errors.New("extension not allowed")

// Indexer stores documents, splits them into passages and keeps the link index in sync.
type Indexer struct {
	storage   storage.Storage
	links     keyword.LinkIndex
	splitter  *corpus.Splitter
	extractor *extract.Extractor
	workers   int
	onChange  func()
	logger    *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithWorkers bounds how many files IndexDirectory extracts at once.
func WithWorkers(n int) IndexerOption {
	return func(idx *Indexer) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// WithChangeHook registers fn to run after every change to the stored corpus.
func WithChangeHook(fn func()) IndexerOption {
	return func(idx *Indexer) { idx.onChange = fn }
}

// NewIndexer creates an indexer with the given dependencies.
// links and extractor may be nil; without an extractor all files are read as plain text.
func NewIndexer(
	store storage.Storage,
	links keyword.LinkIndex,
	splitter *corpus.Splitter,
	extractor *extract.Extractor,
	opts ...IndexerOption,
) *Indexer {
	if splitter == nil {
		splitter = corpus.NewSplitter(corpus.ModeBlock, "")
	}
	idx := &Indexer{
		storage:   store,
		links:     links,
		splitter:  splitter,
		extractor: extractor,
		workers:   defaultWorkers,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *Indexer) changed() {
	if idx.onChange != nil {
		idx.onChange()
	}
}

// IndexDocument stores raw text as a document and splits it into passages.
// A missing ID gets a random UUID. Returns the stored document.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	splitter := idx.splitter
	if input.SplitMode != "" {
		mode, err := corpus.ParseMode(input.SplitMode)
		if err != nil {
			return nil, err
		}
		splitter = corpus.NewSplitter(mode, "")
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	doc := &models.Document{
		ID:       input.ID,
		Title:    input.Title,
		Content:  input.Content,
		Metadata: input.Metadata,
	}
	if err := idx.save(ctx, doc, splitter); err != nil {
		return nil, err
	}
	idx.changed()
	return doc, nil
}

func (idx *Indexer) save(ctx context.Context, doc *models.Document, splitter *corpus.Splitter) error {
	passages := splitter.Split(doc.ID, doc.Content)
	if err := idx.storage.SaveDocument(ctx, doc, passages); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	if idx.links != nil && (doc.Title != "" || doc.Path != "") {
		if err := idx.links.Index(ctx, doc.ID, doc); err != nil {
			return fmt.Errorf("failed to index document link: %w", err)
		}
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer document stored",
			zap.String("doc_id", doc.ID), zap.String("title", doc.Title), zap.Int("passages", len(passages)))
	}
	return nil
}

const (
	metaKeySourceMtime = "source_mtime"
	metaKeySourceSize  = "source_size"
)

// prepared is a file that has been read and extracted but not yet stored.
type prepared struct {
	doc       *models.Document
	unchanged bool
}

// IndexFile reads a file from path and indexes it. The document ID is derived from the
// absolute path so re-indexing updates the same document. If allowedExts is non-empty, the
// file's extension must be in the list (case-insensitive). Files already indexed with the
// same mtime and size are skipped.
func (idx *Indexer) IndexFile(ctx context.Context, path string, allowedExts []string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer indexing file", zap.String("path", path))
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	ext := filepath.Ext(absPath)
	if len(allowedExts) > 0 && !extensionAllowed(ext, allowedExts) {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	p, err := idx.prepareFile(ctx, absPath)
	if err != nil {
		return err
	}
	if err := idx.commit(ctx, p); err != nil {
		return err
	}
	if !p.unchanged {
		idx.changed()
	}
	return nil
}

func (idx *Indexer) prepareFile(ctx context.Context, absPath string) (*prepared, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	docID := fileid.FileDocID(absPath)
	if existing, ok := idx.unchangedDocument(ctx, docID, absPath, info); ok {
		return &prepared{doc: existing, unchanged: true}, nil
	}
	text, err := idx.extractContent(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", absPath, err)
	}
	return &prepared{doc: &models.Document{
		ID:      docID,
		Title:   filepath.Base(absPath),
		Path:    absPath,
		Content: text,
		Metadata: map[string]interface{}{
			// Stored as strings: UnixNano exceeds float64 precision after a JSON round trip.
			metaKeySourceMtime: strconv.FormatInt(info.ModTime().UnixNano(), 10),
			metaKeySourceSize:  strconv.FormatInt(info.Size(), 10),
		},
	}}, nil
}

func (idx *Indexer) commit(ctx context.Context, p *prepared) error {
	if p.unchanged {
		// Keep the link index populated when it was recreated empty.
		if idx.links != nil {
			if err := idx.links.Index(ctx, p.doc.ID, p.doc); err != nil && idx.logger != nil {
				idx.logger.Warn("link index repair failed", zap.String("path", p.doc.Path), zap.Error(err))
			}
		}
		if idx.logger != nil {
			idx.logger.Debug("indexer skipping unchanged file", zap.String("path", p.doc.Path))
		}
		return nil
	}
	return idx.save(ctx, p.doc, idx.splitter)
}

// unchangedDocument returns the stored document for absPath when its mtime and size still match.
func (idx *Indexer) unchangedDocument(ctx context.Context, docID, absPath string, info os.FileInfo) (*models.Document, bool) {
	doc, err := idx.storage.GetDocument(ctx, docID)
	if err != nil || doc.Path != absPath || doc.Metadata == nil {
		return nil, false
	}
	if metadataInt64(doc.Metadata, metaKeySourceMtime) != info.ModTime().UnixNano() ||
		metadataInt64(doc.Metadata, metaKeySourceSize) != info.Size() {
		return nil, false
	}
	return doc, true
}

func metadataInt64(m map[string]interface{}, key string) int64 {
	switch n := m[key].(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// DirectoryReport summarizes an IndexDirectory run.
type DirectoryReport struct {
	Indexed   int      `json:"indexed"`
	Unchanged int      `json:"unchanged"`
	Failed    []string `json:"failed,omitempty"`
}

// IndexDirectory walks dir recursively and indexes each regular file whose extension
// is in allowedExts (all files when empty). Files are extracted concurrently but stored
// in lexical path order, so corpus order does not depend on scheduling. Files that
// cannot be extracted are logged and listed in the report; storage errors abort the run.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string, allowedExts []string) (*DirectoryReport, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	var paths []string
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if len(allowedExts) > 0 && !extensionAllowed(filepath.Ext(path), allowedExts) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		if finfo, statErr := os.Stat(path); statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absDir, err)
	}

	results := make([]*prepared, len(paths))
	failures := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := idx.prepareFile(gctx, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &DirectoryReport{}
	for i, p := range results {
		if p == nil {
			report.Failed = append(report.Failed, paths[i])
			if idx.logger != nil {
				idx.logger.Warn("indexer skipping file", zap.String("path", paths[i]), zap.Error(failures[i]))
			}
			continue
		}
		if err := idx.commit(ctx, p); err != nil {
			return report, err
		}
		if p.unchanged {
			report.Unchanged++
		} else {
			report.Indexed++
		}
	}
	if report.Indexed > 0 {
		idx.changed()
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer directory done", zap.String("dir", absDir),
			zap.Int("indexed", report.Indexed), zap.Int("unchanged", report.Unchanged), zap.Int("failed", len(report.Failed)))
	}
	return report, nil
}

func (idx *Indexer) extractContent(path string) (string, error) {
	if idx.extractor != nil {
		return idx.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}

// DeleteDocument removes a document from the link index and storage.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	if idx.logger != nil {
		idx.logger.Debug("indexer deleting document", zap.String("id", id))
	}
	if idx.links != nil {
		if err := idx.links.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete from link index: %w", err)
		}
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	idx.changed()
	return nil
}

// DeleteFile removes the document indexed from path.
func (idx *Indexer) DeleteFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return idx.DeleteDocument(ctx, fileid.FileDocID(absPath))
}
