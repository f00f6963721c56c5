// Package selector picks the media inputs for one run.
package selector

import (
	"math/rand"
	"time"

	"github.com/samber/lo"

	"quote-video-poster/internal/catalog"
	"quote-video-poster/internal/errkind"
)

func init() {
	rand.Seed(time.Now().UnixNano())
}

func randomIndex(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.Intn(n)
}

// PickVideo returns a uniform-random item whose URL has not yet been consumed
// as a source video. An empty candidate set after exclusion is exhaustion, a
// user-visible condition rather than a crash.
func PickVideo(items []catalog.Item, usedURLs []string) (catalog.Item, error) {
	if len(items) == 0 {
		return catalog.Item{}, errkind.Wrapf(errkind.Exhaustion, "no supported video files found")
	}

	eligible := lo.Filter(items, func(it catalog.Item, _ int) bool {
		return !lo.Contains(usedURLs, it.URL)
	})
	if len(eligible) == 0 {
		return catalog.Item{}, errkind.Wrapf(errkind.Exhaustion,
			"all %d source videos have been used; add new videos or clear the tracker", len(items))
	}
	return eligible[randomIndex(len(eligible))], nil
}

// PickAudio returns a uniform-random audio item. Audio reuse across runs is
// allowed, so there is no exclusion.
func PickAudio(items []catalog.Item) (catalog.Item, error) {
	if len(items) == 0 {
		return catalog.Item{}, errkind.Wrapf(errkind.Exhaustion, "no supported audio files found")
	}
	return items[randomIndex(len(items))], nil
}
