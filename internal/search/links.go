package search

import (
	"github.com/hyperjump/kiji/internal/keyword"
	"github.com/hyperjump/kiji/internal/models"
)

// CollectLinks converts link index hits to document links, dropping duplicate IDs
// and keeping at most limit entries in hit order.
func CollectLinks(hits []*keyword.LinkResult, limit int) []models.DocumentLink {
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(hits))
	links := make([]models.DocumentLink, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		links = append(links, models.DocumentLink{
			ID:    h.ID,
			Title: h.Name,
			Path:  h.Path,
			Score: h.Score,
		})
		if limit > 0 && len(links) == limit {
			break
		}
	}
	return links
}
