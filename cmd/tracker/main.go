package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"quote-video-poster/internal"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/s3"
	"quote-video-poster/internal/tracker"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	var (
		list   = flag.Bool("list", false, "Print every usage record")
		verify = flag.Bool("verify", false, "Check that no source video was used twice")
	)
	flag.Parse()

	if !*list && !*verify {
		fmt.Println("Usage: tracker [-list] [-verify]")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -list      Print every usage record")
		fmt.Println("  -verify    Check that no source video was used twice")
		os.Exit(1)
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New("tracker.log")
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	var store tracker.Store
	if cfg.TrackerBackend == "s3" {
		s3Client, err := s3.New(cfg)
		if err != nil {
			log.Errorf("Error creating S3 client: %v", err)
			os.Exit(1)
		}
		store = tracker.NewS3Store(s3Client, cfg.TrackerKey, log)
	} else {
		store = tracker.NewFileStore(cfg.TrackerPath, log)
	}

	recs, err := store.All(context.Background())
	if err != nil {
		log.Errorf("Error reading tracker: %v", err)
		os.Exit(1)
	}

	if *list {
		fmt.Printf("=== %d usage record(s) ===\n", len(recs))
		for _, r := range recs {
			fmt.Printf("%s  %s\n  video: %s\n  audio: %s\n  merged: %s\n",
				r.PostedAt.Format("2006-01-02 15:04:05"), r.RunID,
				r.SourceVideoURL, r.SourceAudioURL, r.MergedURL)
		}
	}

	if *verify {
		if err := tracker.VerifyUniqueSourceVideos(recs); err != nil {
			fmt.Printf("❌ Invariant violated: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ %d record(s), no source video used twice\n", len(recs))
	}
}
