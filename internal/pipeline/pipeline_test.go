package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"

	"quote-video-poster/internal"
	"quote-video-poster/internal/catalog"
	"quote-video-poster/internal/errkind"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
	"quote-video-poster/internal/publisher"
	"quote-video-poster/internal/tracker"
)

type fakeCatalog struct {
	videos      []catalog.Item
	audios      []catalog.Item
	listErr     error
	downloadErr error
	uploadErr   error
	uploadedURL string
}

func (f *fakeCatalog) ListMedia(ctx context.Context, folder string, kind model.MediaKind) ([]catalog.Item, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if kind == model.KindVideo {
		return f.videos, nil
	}
	return f.audios, nil
}

func (f *fakeCatalog) Download(ctx context.Context, item catalog.Item, dest string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(dest, []byte(item.URL), 0o644)
}

func (f *fakeCatalog) UploadMerged(ctx context.Context, localPath string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploadedURL = "https://store.example.com/bucket/merged_posts/" + filepath.Base(localPath)
	return f.uploadedURL, nil
}

type fakeComposer struct {
	workdir string
	err     error
}

func (f *fakeComposer) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	f.workdir = filepath.Dir(outputPath)
	return os.WriteFile(outputPath, []byte("merged"), 0o644)
}

type fakePublisher struct {
	calls         int
	err           error
	alreadyPosted bool
	lastReq       *publisher.PublishRequest
}

func (f *fakePublisher) Platform() string { return "fake" }

func (f *fakePublisher) Publish(ctx context.Context, req *publisher.PublishRequest) (*publisher.PublishResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &publisher.PublishResult{Platform: "fake", PostID: "p1", AlreadyPosted: f.alreadyPosted}, nil
}

func item(key string) catalog.Item {
	return catalog.Item{Key: key, URL: "https://store.example.com/bucket/" + key, Ext: ".mp4"}
}

func newTestPipeline(t *testing.T, cat *fakeCatalog, comp *fakeComposer, pub *fakePublisher) (*Pipeline, tracker.Store) {
	t.Helper()
	log, err := logging.New(filepath.Join(t.TempDir(), "errors.log"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })

	cfg := internal.Config{
		VideoPrefix:  "quotes_videos/",
		MusicPrefix:  "backmusic/",
		MergedPrefix: "merged_posts/",
		Hashtags:     "#quotes",
	}
	store := tracker.NewFileStore(filepath.Join(t.TempDir(), "tracker.json"), log)
	return New(cfg, cat, store, comp, pub, log), store
}

func TestRunSuccessAppendsRecordAndCleansUp(t *testing.T) {
	cat := &fakeCatalog{
		videos: []catalog.Item{item("quotes_videos/daily_wisdom-193847561.mp4")},
		audios: []catalog.Item{{Key: "backmusic/track.mp3", URL: "https://store.example.com/bucket/backmusic/track.mp3", Ext: ".mp3"}},
	}
	comp := &fakeComposer{}
	pub := &fakePublisher{}
	p, store := newTestPipeline(t, cat, comp, pub)

	rec, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if pub.calls != 1 {
		t.Fatalf("expected 1 publish call, got %d", pub.calls)
	}
	if pub.lastReq.Caption != "daily wisdom #quotes" {
		t.Errorf("caption = %q", pub.lastReq.Caption)
	}
	if pub.lastReq.VideoURL != cat.uploadedURL {
		t.Errorf("published %q, uploaded %q", pub.lastReq.VideoURL, cat.uploadedURL)
	}

	if rec.SourceVideoURL != cat.videos[0].URL || rec.SourceAudioURL != cat.audios[0].URL || rec.MergedURL != cat.uploadedURL {
		t.Fatalf("unexpected record %+v", rec)
	}

	recs, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].MergedURL != cat.uploadedURL {
		t.Fatalf("unexpected history %+v", recs)
	}

	if comp.workdir == "" {
		t.Fatal("composer never ran")
	}
	if _, err := os.Stat(comp.workdir); !os.IsNotExist(err) {
		t.Fatalf("workdir %s not cleaned up", comp.workdir)
	}
}

func TestRunExhaustionWhenAllVideosUsed(t *testing.T) {
	cat := &fakeCatalog{
		videos: []catalog.Item{item("quotes_videos/clip.mp4")},
		audios: []catalog.Item{item("backmusic/track.mp3")},
	}
	pub := &fakePublisher{}
	p, store := newTestPipeline(t, cat, &fakeComposer{}, pub)

	// Mark the only video as already used.
	if err := store.Append(context.Background(), model.PostRecord{
		RunID:          "r0",
		SourceVideoURL: cat.videos[0].URL,
		MergedURL:      "m0",
	}); err != nil {
		t.Fatal(err)
	}

	_, err := p.Run(context.Background())
	if !errkind.Is(err, errkind.Exhaustion) {
		t.Fatalf("expected Exhaustion, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("expected no publish call, got %d", pub.calls)
	}
	recs, _ := store.All(context.Background())
	if len(recs) != 1 {
		t.Fatalf("exhausted run must not write a record, history %+v", recs)
	}
}

func TestRunComposerFailureIsProcessing(t *testing.T) {
	cat := &fakeCatalog{
		videos: []catalog.Item{item("quotes_videos/clip.mp4")},
		audios: []catalog.Item{item("backmusic/track.mp3")},
	}
	pub := &fakePublisher{}
	p, store := newTestPipeline(t, cat, &fakeComposer{err: errors.New("decode error")}, pub)

	_, err := p.Run(context.Background())
	if !errkind.Is(err, errkind.Processing) {
		t.Fatalf("expected Processing, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatal("must not publish after a failed merge")
	}
	if recs, _ := store.All(context.Background()); len(recs) != 0 {
		t.Fatalf("failed run must not write a record, history %+v", recs)
	}
}

func TestRunDownloadFailureIsTransport(t *testing.T) {
	cat := &fakeCatalog{
		videos:      []catalog.Item{item("quotes_videos/clip.mp4")},
		audios:      []catalog.Item{item("backmusic/track.mp3")},
		downloadErr: errors.New("connection reset"),
	}
	p, _ := newTestPipeline(t, cat, &fakeComposer{}, &fakePublisher{})

	_, err := p.Run(context.Background())
	if !errkind.Is(err, errkind.Transport) {
		t.Fatalf("expected Transport, got %v", err)
	}
}

func TestRunPublishFailureIsTransportAndWritesNoRecord(t *testing.T) {
	cat := &fakeCatalog{
		videos: []catalog.Item{item("quotes_videos/clip.mp4")},
		audios: []catalog.Item{item("backmusic/track.mp3")},
	}
	pub := &fakePublisher{err: errors.New("api 500")}
	p, store := newTestPipeline(t, cat, &fakeComposer{}, pub)

	_, err := p.Run(context.Background())
	if !errkind.Is(err, errkind.Transport) {
		t.Fatalf("expected Transport, got %v", err)
	}
	if recs, _ := store.All(context.Background()); len(recs) != 0 {
		t.Fatalf("failed publish must not write a record, history %+v", recs)
	}
}

func TestRunUploadFailureIsTransportAndWritesNoRecord(t *testing.T) {
	cat := &fakeCatalog{
		videos:    []catalog.Item{item("quotes_videos/clip.mp4")},
		audios:    []catalog.Item{item("backmusic/track.mp3")},
		uploadErr: errors.New("slow down"),
	}
	pub := &fakePublisher{}
	p, store := newTestPipeline(t, cat, &fakeComposer{}, pub)

	_, err := p.Run(context.Background())
	if !errkind.Is(err, errkind.Transport) {
		t.Fatalf("expected Transport, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatal("must not publish after a failed upload")
	}
	if recs, _ := store.All(context.Background()); len(recs) != 0 {
		t.Fatalf("failed upload must not write a record, history %+v", recs)
	}
}

func TestRunAlreadyPostedStillRecordsUsage(t *testing.T) {
	cat := &fakeCatalog{
		videos: []catalog.Item{item("quotes_videos/clip.mp4")},
		audios: []catalog.Item{item("backmusic/track.mp3")},
	}
	pub := &fakePublisher{alreadyPosted: true}
	p, store := newTestPipeline(t, cat, &fakeComposer{}, pub)

	rec, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.MergedURL == "" || rec.SourceVideoURL != cat.videos[0].URL {
		t.Fatalf("unexpected record %+v", rec)
	}

	// The clip is live even though this run did not post it, so the source
	// still counts as used and drops out of the next selection.
	recs, _ := store.All(context.Background())
	if len(recs) != 1 || recs[0].SourceVideoURL != cat.videos[0].URL {
		t.Fatalf("short-circuited publish must still record usage, history %+v", recs)
	}
}

// dedupPublisher mirrors the Graph publisher's duplicate check: a merged URL
// already in the history succeeds without an outbound post.
type dedupPublisher struct {
	store tracker.Store
	posts int
}

func (d *dedupPublisher) Platform() string { return "fake" }

func (d *dedupPublisher) Publish(ctx context.Context, req *publisher.PublishRequest) (*publisher.PublishResult, error) {
	recs, _ := d.store.All(ctx)
	if tracker.HasMergedURL(recs, req.VideoURL) {
		return &publisher.PublishResult{Platform: "fake", AlreadyPosted: true}, nil
	}
	d.posts++
	return &publisher.PublishResult{Platform: "fake", PostID: "p1"}, nil
}

func TestRunVideosDifferingOnlyInTrailingIDBothGetPosted(t *testing.T) {
	// "daily_wisdom-111" and "daily_wisdom-222" share a derived title; the
	// merged keys must still differ so the second run posts a fresh clip
	// instead of tripping the duplicate check and stalling the rotation.
	cat := &fakeCatalog{
		videos: []catalog.Item{
			item("quotes_videos/daily_wisdom-111.mp4"),
			item("quotes_videos/daily_wisdom-222.mp4"),
		},
		audios: []catalog.Item{item("backmusic/track.mp3")},
	}

	log, err := logging.New(filepath.Join(t.TempDir(), "errors.log"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { log.Close() })

	cfg := internal.Config{
		VideoPrefix:  "quotes_videos/",
		MusicPrefix:  "backmusic/",
		MergedPrefix: "merged_posts/",
	}
	store := tracker.NewFileStore(filepath.Join(t.TempDir(), "tracker.json"), log)
	pub := &dedupPublisher{store: store}
	p := New(cfg, cat, store, &fakeComposer{}, pub, log)

	for i := 0; i < 2; i++ {
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if pub.posts != 2 {
		t.Fatalf("expected 2 outbound posts, got %d", pub.posts)
	}
	recs, err := store.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %+v", recs)
	}
	if recs[0].MergedURL == recs[1].MergedURL {
		t.Fatalf("merged URLs must differ, both %q", recs[0].MergedURL)
	}
	used := tracker.UsedSourceVideoURLs(recs)
	for _, v := range cat.videos {
		if !lo.Contains(used, v.URL) {
			t.Fatalf("source %s never marked used, history %+v", v.URL, recs)
		}
	}
}
