package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/ranking"
)

const defaultPhraseBoost = 2.0

// linkDoc is what gets stored in Bleve for each document.
type linkDoc struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Ext   string `json:"ext"`
}

// BleveIndex implements LinkIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "parser" only matches "parser".
	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = false
	docMapping.AddFieldMappingsAt("title", titleField)

	extField := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("ext", extField)

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	docMapping.AddFieldMappingsAt("name", stored)
	docMapping.AddFieldMappingsAt("path", stored)

	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is reopened so unchanged files do not need re-indexing.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemIndex creates an in-memory index. Used by tests and by `kiji search` without a link index.
func NewMemIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes the filename of doc under id. Documents without a title are indexed
// under their path's base name.
func (b *BleveIndex) Index(ctx context.Context, id string, doc *models.Document) error {
	name := doc.Title
	if name == "" {
		name = filepath.Base(doc.Path)
	}
	ld := linkDoc{
		Title: TitleTerms(name),
		Name:  name,
		Path:  doc.Path,
		Ext:   strings.ToLower(filepath.Ext(name)),
	}
	if err := b.index.Index(id, ld); err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	return nil
}

// TitleTerms turns a filename into searchable text: the extension is dropped,
// separators become spaces and CamelCase words are added in split form, so
// "OrderRouting_v2.pdf" is searchable as "order routing" and "orderrouting".
func TitleTerms(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base))
	terms := make([]string, 0, len(words)*2)
	for _, w := range words {
		terms = append(terms, w)
		if parts := ranking.SplitCamelCase(w); len(parts) > 1 {
			terms = append(terms, parts...)
		}
	}
	return strings.Join(terms, " ")
}

// Search returns documents whose filename contains every word of query, or its
// loose form, best first. A filename containing the query as a phrase is boosted.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*LinkResult, error) {
	q := b.buildQuery(query, opts)
	if q == nil {
		return []*LinkResult{}, nil
	}
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"name", "path"}
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*LinkResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &LinkResult{
			ID:    hit.ID,
			Name:  stringField(hit.Fields, "name"),
			Path:  stringField(hit.Fields, "path"),
			Score: hit.Score,
		}
	}
	return out, nil
}

func (b *BleveIndex) buildQuery(query string, opts *SearchOptions) blevequery.Query {
	analyzed := ranking.Analyze(query)
	if analyzed.Loose == "" {
		return nil
	}
	phraseBoost := defaultPhraseBoost
	if opts != nil && opts.PhraseBoost > 0 {
		phraseBoost = opts.PhraseBoost
	}

	allWords := bleve.NewMatchQuery(strings.Join(analyzed.Tokens, " "))
	allWords.SetField("title")
	allWords.SetOperator(blevequery.MatchQueryOperatorAnd)

	loose := bleve.NewMatchQuery(analyzed.Loose)
	loose.SetField("title")

	phrase := bleve.NewMatchPhraseQuery(strings.Join(analyzed.Tokens, " "))
	phrase.SetField("title")
	phrase.SetBoost(phraseBoost)

	var q blevequery.Query = bleve.NewDisjunctionQuery(allWords, loose, phrase)

	if opts != nil && len(opts.Extensions) > 0 {
		exts := make([]blevequery.Query, 0, len(opts.Extensions))
		for _, ext := range opts.Extensions {
			tq := bleve.NewTermQuery(normalizeExt(ext))
			tq.SetField("ext")
			exts = append(exts, tq)
		}
		q = bleve.NewConjunctionQuery(q, bleve.NewDisjunctionQuery(exts...))
	}
	return q
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func stringField(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

// Delete removes a document from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
