// Package ingest keeps the background-music folder stocked by pulling audio
// tracks from configured YouTube playlists.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkdai/youtube/v2"
	"github.com/tidwall/gjson"

	"quote-video-poster/internal"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/s3"
)

type Ingestor struct {
	cfg internal.Config
	s3  s3.Client
	log *logging.Logger
}

func New(cfg internal.Config, s3c s3.Client, log *logging.Logger) *Ingestor {
	return &Ingestor{cfg: cfg, s3: s3c, log: log}
}

// Run downloads every playlist track not yet present in the music folder.
// Individual track failures are logged and skipped.
func (in *Ingestor) Run(ctx context.Context) error {
	playlists, err := in.loadPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("load playlists: %w", err)
	}
	if len(playlists) == 0 {
		in.log.Infof("ingest: no playlists configured, nothing to do")
		return nil
	}

	existing, err := in.existingTracks(ctx)
	if err != nil {
		return fmt.Errorf("list music folder: %w", err)
	}
	in.log.Infof("ingest: %d playlist(s), %d track(s) already stored", len(playlists), len(existing))

	client := youtube.Client{}
	added := 0
	for _, plURL := range playlists {
		pl, err := client.GetPlaylistContext(ctx, plURL)
		if err != nil {
			in.log.Errorf("ingest: fetch playlist %s: %v", plURL, err)
			continue
		}
		in.log.Infof("ingest: playlist %s has %d entries", plURL, len(pl.Videos))

		for _, entry := range pl.Videos {
			key := in.cfg.MusicPrefix + entry.ID + ".m4a"
			if existing[key] {
				continue
			}
			if err := in.storeTrack(ctx, &client, entry, key); err != nil {
				in.log.Errorf("ingest: track %s (%s): %v", entry.ID, entry.Title, err)
				continue
			}
			existing[key] = true
			added++
			in.log.Infof("ingest: stored %s (%s)", key, entry.Title)
		}
	}

	in.log.Infof("ingest: done, %d new track(s)", added)
	return nil
}

func (in *Ingestor) storeTrack(ctx context.Context, client *youtube.Client, entry *youtube.PlaylistEntry, key string) error {
	video, err := client.GetVideoContext(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("get video: %w", err)
	}
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return fmt.Errorf("no audio formats")
	}

	stream, _, err := client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}
	defer stream.Close()

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("ingest-%s.m4a", entry.ID))
	defer os.Remove(tmpFile)

	f, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, stream); err != nil {
		f.Close()
		return fmt.Errorf("download stream: %w", err)
	}
	f.Close()

	return in.s3.PutFile(ctx, key, tmpFile, "audio/mp4")
}

func (in *Ingestor) existingTracks(ctx context.Context) (map[string]bool, error) {
	objects, err := in.s3.List(ctx, in.cfg.MusicPrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(objects))
	for _, obj := range objects {
		out[obj.Key] = true
	}
	return out, nil
}

func (in *Ingestor) loadPlaylists(ctx context.Context) ([]string, error) {
	data, err := in.s3.GetBytes(ctx, in.cfg.PlaylistsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in.cfg.PlaylistsKey, err)
	}

	res := gjson.GetBytes(data, "@this")
	if !res.IsArray() {
		return nil, fmt.Errorf("%s must be a JSON array of playlist URLs", in.cfg.PlaylistsKey)
	}
	var out []string
	for _, item := range res.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
