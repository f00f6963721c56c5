package selector

import (
	"testing"

	"quote-video-poster/internal/catalog"
	"quote-video-poster/internal/errkind"
)

func items(urls ...string) []catalog.Item {
	out := make([]catalog.Item, len(urls))
	for i, u := range urls {
		out[i] = catalog.Item{Key: u, URL: u, Ext: ".mp4"}
	}
	return out
}

func TestPickVideoExcludesUsed(t *testing.T) {
	candidates := items("v1", "v2", "v3")
	used := []string{"v1", "v3"}

	for i := 0; i < 20; i++ {
		got, err := PickVideo(candidates, used)
		if err != nil {
			t.Fatalf("PickVideo: %v", err)
		}
		if got.URL != "v2" {
			t.Fatalf("picked excluded video %s", got.URL)
		}
	}
}

func TestPickVideoExhaustion(t *testing.T) {
	_, err := PickVideo(items("v1", "v2"), []string{"v1", "v2"})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errkind.Is(err, errkind.Exhaustion) {
		t.Fatalf("expected Exhaustion kind, got %v", errkind.KindOf(err))
	}
}

func TestPickVideoEmptyFolder(t *testing.T) {
	_, err := PickVideo(nil, nil)
	if !errkind.Is(err, errkind.Exhaustion) {
		t.Fatalf("expected Exhaustion kind, got %v", err)
	}
}

func TestPickAudioAllowsReuse(t *testing.T) {
	candidates := items("a1")
	for i := 0; i < 5; i++ {
		got, err := PickAudio(candidates)
		if err != nil {
			t.Fatalf("PickAudio: %v", err)
		}
		if got.URL != "a1" {
			t.Fatalf("unexpected pick %s", got.URL)
		}
	}
}

func TestPickAudioEmptyFolder(t *testing.T) {
	_, err := PickAudio(nil)
	if !errkind.Is(err, errkind.Exhaustion) {
		t.Fatalf("expected Exhaustion kind, got %v", err)
	}
}

func TestPickVideoStaysWithinEligibleSet(t *testing.T) {
	candidates := items("v1", "v2", "v3", "v4")
	used := []string{"v4"}
	eligible := map[string]bool{"v1": true, "v2": true, "v3": true}

	for i := 0; i < 50; i++ {
		got, err := PickVideo(candidates, used)
		if err != nil {
			t.Fatalf("PickVideo: %v", err)
		}
		if !eligible[got.URL] {
			t.Fatalf("picked ineligible video %s", got.URL)
		}
	}
}
