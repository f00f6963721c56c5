package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"quote-video-poster/internal"
	"quote-video-poster/internal/ai"
	"quote-video-poster/internal/catalog"
	"quote-video-poster/internal/composer"
	"quote-video-poster/internal/errkind"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/notify"
	"quote-video-poster/internal/pipeline"
	"quote-video-poster/internal/publisher"
	"quote-video-poster/internal/s3"
	"quote-video-poster/internal/scheduler"
	"quote-video-poster/internal/tracker"
)

func main() {
	// Load .env file if it exists (try multiple paths)
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		_ = godotenv.Load(path)
	}

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Errorf("config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	p, err := buildPipeline(cfg, log)
	if err != nil {
		log.Errorf("build pipeline: %v", err)
		os.Exit(1)
	}

	if cfg.PostCron != "" {
		log.Infof("running as daemon, cron=%q", cfg.PostCron)
		sched, err := scheduler.New(cfg.PostCron, func(ctx context.Context) error {
			_, err := p.Run(ctx)
			return err
		}, log)
		if err != nil {
			log.Errorf("scheduler: %v", err)
			os.Exit(1)
		}
		if err := sched.Run(ctx); err != nil {
			log.Errorf("scheduler: %v", err)
			os.Exit(1)
		}
		return
	}

	rec, err := p.Run(ctx)
	if err != nil {
		log.Errorf("run aborted: %v", err)
		os.Exit(exitCode(err))
	}
	log.Infof("run complete: published %s", rec.MergedURL)
}

func buildPipeline(cfg internal.Config, log *logging.Logger) (*pipeline.Pipeline, error) {
	s3c, err := s3.New(cfg)
	if err != nil {
		return nil, err
	}

	var store tracker.Store
	if cfg.TrackerBackend == "s3" {
		store = tracker.NewS3Store(s3c, cfg.TrackerKey, log)
	} else {
		store = tracker.NewFileStore(cfg.TrackerPath, log)
	}

	cat := catalog.New(cfg, s3c, log)
	comp := composer.New(log)
	fb := publisher.NewFacebookPublisher(cfg.PageID, cfg.FBAccessToken, store, log)

	p := pipeline.New(cfg, cat, store, comp, fb, log)

	if cfg.XConsumerKey != "" && cfg.XConsumerSecret != "" && cfg.XAccessToken != "" && cfg.XAccessTokenSecret != "" {
		p.WithCrossPosts(publisher.NewXPublisher(cfg.XConsumerKey, cfg.XConsumerSecret, cfg.XAccessToken, cfg.XAccessTokenSecret, log))
	}
	if cfg.GeminiAPIKey != "" {
		p.WithCaptioner(ai.NewCaptionWriter(cfg.GeminiAPIKey, log))
	}
	if n, err := notify.New(cfg.TelegramToken, cfg.NotifyChatID, log); err != nil {
		log.Warnf("notify: %v (continuing without notifications)", err)
	} else if n != nil {
		p.WithNotifier(n)
	}

	return p, nil
}

func exitCode(err error) int {
	switch errkind.KindOf(err) {
	case errkind.Exhaustion:
		return 2
	case errkind.Transport:
		return 3
	case errkind.Processing:
		return 4
	default:
		return 1
	}
}
