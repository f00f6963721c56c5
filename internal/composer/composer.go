// Package composer merges a source video with a background track using
// ffmpeg, replacing the video's own audio.
package composer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"quote-video-poster/internal/logging"
)

// ffmpegSem limits concurrent ffmpeg processes to 1 to avoid
// "pthread_create() failed: Resource temporarily unavailable" on small hosts.
var ffmpegSem = make(chan struct{}, 1)

type Composer struct {
	log *logging.Logger
}

func New(log *logging.Logger) *Composer {
	return &Composer{log: log}
}

// Merge writes a merged clip to outputPath: the video stream from videoPath
// with the audio from audioPath trimmed or looped to the exact video
// duration. Both streams are re-encoded (libx264/aac) for wide compatibility.
func (c *Composer) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	videoDur, err := c.probeDuration(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("probe video duration: %w", err)
	}
	audioDur, err := c.probeDuration(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("probe audio duration: %w", err)
	}

	loops := loopCount(videoDur, audioDur)
	switch {
	case audioDur > videoDur:
		c.log.Infof("composer: audio (%.2fs) longer than video (%.2fs), trimming audio", audioDur, videoDur)
	case loops > 0:
		c.log.Infof("composer: audio (%.2fs) shorter than video (%.2fs), looping %d extra time(s)", audioDur, videoDur, loops)
	default:
		c.log.Infof("composer: audio and video durations match (%.2fs)", videoDur)
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
	}
	if loops > 0 {
		// -stream_loop N plays the next input N+1 times; -t trims the last
		// repetition at the exact video boundary.
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
	}
	args = append(args,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-t", fmt.Sprintf("%.3f", videoDur),
		"-y",
		outputPath,
	)

	ffmpegSem <- struct{}{}
	defer func() { <-ffmpegSem }()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &stderr

	c.log.Infof("composer: running ffmpeg (video=%.2fs, audio=%.2fs, loops=%d)", videoDur, audioDur, loops)
	if err := cmd.Run(); err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return fmt.Errorf("ffmpeg: %s", errMsg)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg did not create output file %s: %w", outputPath, err)
	}
	c.log.Infof("composer: merged clip written to %s", outputPath)
	return nil
}

// loopCount returns how many extra plays of the audio are needed to cover the
// video. Zero means the audio is long enough as-is.
func loopCount(videoDur, audioDur float64) int {
	if audioDur <= 0 || audioDur >= videoDur {
		return 0
	}
	return int(videoDur / audioDur)
}

func (c *Composer) probeDuration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("input not found: %w", err)
	}

	ctxProbe, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctxProbe, "ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var dur float64
	if _, err := fmt.Sscanf(string(out), "%f", &dur); err != nil || dur <= 0 {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q", path, string(out))
	}
	return dur, nil
}
