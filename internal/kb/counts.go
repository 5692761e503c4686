package kb

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CountResult is the outcome of one per-document count fetch.
type CountResult struct {
	Total int
	Err   error
}

// segmentLister is the subset of Client needed for counting.
type segmentLister interface {
	ListDocumentSegments(ctx context.Context, documentID string) ([]Segment, int, error)
}

// CountDocuments fetches the segment count of every document concurrently,
// at most limit requests in flight. Each fetch fails independently; the
// returned map has one entry per document.
func CountDocuments(ctx context.Context, l segmentLister, docs []Document, limit int) map[string]CountResult {
	results := make([]CountResult, len(docs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, doc := range docs {
		g.Go(func() error {
			_, total, err := l.ListDocumentSegments(ctx, doc.ID)
			results[i] = CountResult{Total: total, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]CountResult, len(docs))
	for i, doc := range docs {
		out[doc.ID] = results[i]
	}
	return out
}

// CountDocuments is a convenience wrapper over the package-level function.
func (c *Client) CountDocuments(ctx context.Context, docs []Document, limit int) map[string]CountResult {
	return CountDocuments(ctx, c, docs, limit)
}
