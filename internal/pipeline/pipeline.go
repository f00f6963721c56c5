// Package pipeline sequences one publish cycle: select, download, compose,
// upload, publish, record. The first failure aborts the run; the working
// directory is removed on every path.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quote-video-poster/internal"
	"quote-video-poster/internal/catalog"
	"quote-video-poster/internal/composer"
	"quote-video-poster/internal/errkind"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
	"quote-video-poster/internal/notify"
	"quote-video-poster/internal/publisher"
	"quote-video-poster/internal/selector"
	"quote-video-poster/internal/tracker"
)

// Catalog is the slice of the media catalog the pipeline needs.
type Catalog interface {
	ListMedia(ctx context.Context, folder string, kind model.MediaKind) ([]catalog.Item, error)
	Download(ctx context.Context, item catalog.Item, dest string) error
	UploadMerged(ctx context.Context, localPath string) (string, error)
}

// Composer merges a local video and audio file into outputPath.
type Composer interface {
	Merge(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// Captioner builds the final publish caption from the derived title.
type Captioner interface {
	Caption(ctx context.Context, title, hashtags string) string
}

type Pipeline struct {
	cfg   internal.Config
	cat   Catalog
	store tracker.Store
	comp  Composer
	pub   publisher.Publisher
	cross []publisher.Publisher
	capt  Captioner
	noti  *notify.Notifier
	log   *logging.Logger
}

func New(cfg internal.Config, cat Catalog, store tracker.Store, comp Composer, pub publisher.Publisher, log *logging.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, cat: cat, store: store, comp: comp, pub: pub, log: log}
}

// WithCrossPosts adds optional extra platforms whose failures are non-fatal.
func (p *Pipeline) WithCrossPosts(pubs ...publisher.Publisher) *Pipeline {
	p.cross = append(p.cross, pubs...)
	return p
}

func (p *Pipeline) WithCaptioner(c Captioner) *Pipeline {
	p.capt = c
	return p
}

func (p *Pipeline) WithNotifier(n *notify.Notifier) *Pipeline {
	p.noti = n
	return p
}

// Run executes one publish cycle and returns the appended usage record.
func (p *Pipeline) Run(ctx context.Context) (*model.PostRecord, error) {
	rec, err := p.run(ctx)
	if err != nil {
		p.noti.RunFailed(err)
		return nil, err
	}
	p.noti.PublishSucceeded(*rec)
	return rec, nil
}

func (p *Pipeline) run(ctx context.Context) (*model.PostRecord, error) {
	id := runID()
	p.log.Infof("pipeline: starting run %s", id)

	// A tracker that cannot be read degrades to an empty history.
	history, err := p.store.All(ctx)
	if err != nil {
		p.log.Warnf("pipeline: tracker read failed, using empty history: %v", err)
		history = nil
	}

	videos, err := p.cat.ListMedia(ctx, p.cfg.VideoPrefix, model.KindVideo)
	if err != nil {
		return nil, errkind.Wrap(errkind.Transport, err)
	}
	videoItem, err := selector.PickVideo(videos, tracker.UsedSourceVideoURLs(history))
	if err != nil {
		return nil, err
	}
	p.log.Infof("pipeline: selected source video %s", videoItem.URL)

	audios, err := p.cat.ListMedia(ctx, p.cfg.MusicPrefix, model.KindAudio)
	if err != nil {
		return nil, errkind.Wrap(errkind.Transport, err)
	}
	audioItem, err := selector.PickAudio(audios)
	if err != nil {
		return nil, err
	}
	p.log.Infof("pipeline: selected background track %s", audioItem.URL)

	workdir, err := os.MkdirTemp("", "quote-post-*")
	if err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workdir); err != nil {
			p.log.Warnf("pipeline: cleanup of %s failed: %v", workdir, err)
		} else {
			p.log.Infof("pipeline: cleaned up working directory %s", workdir)
		}
	}()

	videoPath := filepath.Join(workdir, "source_video"+videoItem.Ext)
	audioPath := filepath.Join(workdir, "source_audio"+audioItem.Ext)
	if err := p.cat.Download(ctx, videoItem, videoPath); err != nil {
		return nil, errkind.Wrap(errkind.Transport, fmt.Errorf("download source video: %w", err))
	}
	if err := p.cat.Download(ctx, audioItem, audioPath); err != nil {
		return nil, errkind.Wrap(errkind.Transport, fmt.Errorf("download background audio: %w", err))
	}

	title := composer.DeriveTitle(videoItem.Key)
	mergedPath := filepath.Join(workdir, composer.MergedFileName(videoItem.Key))
	if err := p.comp.Merge(ctx, videoPath, audioPath, mergedPath); err != nil {
		return nil, errkind.Wrap(errkind.Processing, fmt.Errorf("merge failed: %w", err))
	}

	mergedURL, err := p.cat.UploadMerged(ctx, mergedPath)
	if err != nil {
		return nil, errkind.Wrap(errkind.Transport, fmt.Errorf("upload merged video: %w", err))
	}

	caption := title
	if p.cfg.Hashtags != "" {
		caption = title + " " + p.cfg.Hashtags
	}
	if p.capt != nil {
		caption = p.capt.Caption(ctx, title, p.cfg.Hashtags)
	}

	result, err := p.pub.Publish(ctx, &publisher.PublishRequest{VideoURL: mergedURL, Caption: caption})
	if err != nil {
		return nil, errkind.Wrap(errkind.Transport, fmt.Errorf("publish failed: %w", err))
	}
	if result.AlreadyPosted {
		// The merged clip is already live; record the source as used so the
		// next run does not pick it again.
		p.log.Infof("pipeline: merged video was already published, recording usage only")
	}

	rec := model.PostRecord{
		RunID:          id,
		SourceVideoURL: videoItem.URL,
		SourceAudioURL: audioItem.URL,
		MergedURL:      mergedURL,
		PostedAt:       time.Now(),
	}
	if err := p.store.Append(ctx, rec); err != nil {
		// The post is live but untracked; surface loudly so the operator can
		// repair the history before the next run.
		return nil, errkind.Wrap(errkind.Persistence, fmt.Errorf("record usage after publish: %w", err))
	}
	p.log.Infof("pipeline: usage recorded for run %s", rec.RunID)

	if result.AlreadyPosted {
		return &rec, nil
	}

	for _, cp := range p.cross {
		if _, err := cp.Publish(ctx, &publisher.PublishRequest{VideoURL: mergedURL, Caption: caption}); err != nil {
			p.log.Warnf("pipeline: %s cross-post failed: %v", cp.Platform(), err)
		}
	}

	return &rec, nil
}

// runID mirrors the hosted-runner naming: GitHub run metadata when present,
// a timestamp otherwise.
func runID() string {
	if id := os.Getenv("GITHUB_RUN_ID"); id != "" {
		attempt := os.Getenv("GITHUB_RUN_ATTEMPT")
		if attempt == "" {
			attempt = "0"
		}
		return id + "_" + attempt
	}
	return fmt.Sprintf("local_%d", time.Now().Unix())
}
