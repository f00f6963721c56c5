// Package tracker persists the append-only record of completed publish
// cycles. The Store interface is deliberately tiny so the JSON file backend
// can later be swapped for a real datastore without touching callers.
package tracker

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"quote-video-poster/internal/model"
)

type Store interface {
	// Append adds one record. The history is rewritten wholesale; records are
	// never deduplicated on write.
	Append(ctx context.Context, rec model.PostRecord) error
	// All returns the ordered history. A missing or corrupt backing store
	// yields an empty history, not an error.
	All(ctx context.Context) ([]model.PostRecord, error)
}

// UsedSourceVideoURLs returns every URL already consumed as a source video.
func UsedSourceVideoURLs(recs []model.PostRecord) []string {
	return lo.Map(recs, func(r model.PostRecord, _ int) string { return r.SourceVideoURL })
}

// HasMergedURL reports whether url was already published as a merged artifact.
func HasMergedURL(recs []model.PostRecord, url string) bool {
	return lo.ContainsBy(recs, func(r model.PostRecord) bool { return r.MergedURL == url })
}

// VerifyUniqueSourceVideos checks the selection-time invariant that no source
// video URL appears in more than one record.
func VerifyUniqueSourceVideos(recs []model.PostRecord) error {
	seen := make(map[string]string, len(recs))
	for _, r := range recs {
		if prev, ok := seen[r.SourceVideoURL]; ok {
			return fmt.Errorf("source video %s used by runs %s and %s", r.SourceVideoURL, prev, r.RunID)
		}
		seen[r.SourceVideoURL] = r.RunID
	}
	return nil
}
