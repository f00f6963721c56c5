package internal

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Key prefixes acting as catalog folders inside the bucket.
	VideoPrefix  string
	MusicPrefix  string
	MergedPrefix string

	// Usage tracker persistence: "file" (local JSON) or "s3" (JSON object in the bucket).
	TrackerBackend string
	TrackerPath    string
	TrackerKey     string

	PageID        string
	FBAccessToken string
	Hashtags      string

	// Optional X cross-post credentials.
	XConsumerKey       string
	XConsumerSecret    string
	XAccessToken       string
	XAccessTokenSecret string

	// Optional Telegram notifications.
	TelegramToken string
	NotifyChatID  int64

	GeminiAPIKey string

	// When set, cmd/main stays resident and runs on this cron expression
	// instead of running once and exiting.
	PostCron string

	// S3 key of the JSON array of YouTube playlist URLs used by cmd/ingest.
	PlaylistsKey string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey: firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_ACCESS_KEY_ID")),

		VideoPrefix:  "quotes_videos/",
		MusicPrefix:  "backmusic/",
		MergedPrefix: "merged_posts/",

		TrackerBackend: "file",
		TrackerPath:    "posted_media_tracker.json",
		TrackerKey:     "posted_media_tracker.json",

		PageID:        os.Getenv("PAGE_ID"),
		FBAccessToken: os.Getenv("FB_ACCESS_TOKEN"),
		Hashtags:      "#quotes #theunveiledtruth",

		XConsumerKey:       os.Getenv("X_CONSUMER_KEY"),
		XConsumerSecret:    os.Getenv("X_CONSUMER_SECRET"),
		XAccessToken:       os.Getenv("X_ACCESS_TOKEN"),
		XAccessTokenSecret: os.Getenv("X_ACCESS_TOKEN_SECRET"),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		GeminiAPIKey: firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),

		PostCron: os.Getenv("POST_CRON"),

		PlaylistsKey: "payload/music_playlists.json",
	}

	if v := os.Getenv("VIDEO_FOLDER"); v != "" {
		cfg.VideoPrefix = ensureSlash(v)
	}
	if v := os.Getenv("MUSIC_FOLDER"); v != "" {
		cfg.MusicPrefix = ensureSlash(v)
	}
	if v := os.Getenv("MERGED_FOLDER"); v != "" {
		cfg.MergedPrefix = ensureSlash(v)
	}

	if v := os.Getenv("TRACKER_BACKEND"); v != "" {
		if v != "file" && v != "s3" {
			return cfg, errors.New("TRACKER_BACKEND must be \"file\" or \"s3\"")
		}
		cfg.TrackerBackend = v
	}
	if v := os.Getenv("TRACKER_PATH"); v != "" {
		cfg.TrackerPath = v
	}
	if v := os.Getenv("TRACKER_KEY"); v != "" {
		cfg.TrackerKey = v
	}

	if v := os.Getenv("HASHTAGS"); v != "" {
		cfg.Hashtags = v
	}

	if v := os.Getenv("NOTIFY_CHATID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n != 0 {
			cfg.NotifyChatID = n
		}
	}

	if v := os.Getenv("PLAYLISTS_KEY"); v != "" {
		cfg.PlaylistsKey = v
	}

	return cfg, nil
}

// ValidateS3 reports whether the storage settings are complete. Commands that
// never touch the bucket (e.g. inspecting a file-backed tracker) skip it.
func (c Config) ValidateS3() error {
	if c.S3Endpoint == "" || c.S3Region == "" || c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
		return errors.New("S3_* env vars are required")
	}
	return nil
}

func ensureSlash(s string) string {
	if s == "" || s[len(s)-1] == '/' {
		return s
	}
	return s + "/"
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}
