package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"quote-video-poster/internal"
	"quote-video-poster/internal/ingest"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/s3"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New("ingest.log")
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	s3Client, err := s3.New(cfg)
	if err != nil {
		log.Errorf("Error creating S3 client: %v", err)
		os.Exit(1)
	}

	fmt.Println("=== Ingesting background music from playlists ===")
	if err := ingest.New(cfg, s3Client, log).Run(context.Background()); err != nil {
		log.Errorf("ingest failed: %v", err)
		fmt.Printf("❌ Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Music folder up to date")
}
