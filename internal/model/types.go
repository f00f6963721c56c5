package model

import "time"

// MediaKind distinguishes the two catalog roles.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true,
	".webm": true, ".flv": true, ".wmv": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".aac": true,
	".flac": true, ".m4a": true,
}

// SupportedExt reports whether a lowercase file extension (with leading dot)
// is allowed for this kind.
func (k MediaKind) SupportedExt(ext string) bool {
	switch k {
	case KindVideo:
		return videoExtensions[ext]
	case KindAudio:
		return audioExtensions[ext]
	}
	return false
}

// PostRecord is one completed publish cycle. Records are append-only: they
// are never mutated or deleted once written.
type PostRecord struct {
	RunID          string    `json:"run_id"`
	SourceVideoURL string    `json:"source_video_url"`
	SourceAudioURL string    `json:"source_audio_url"`
	MergedURL      string    `json:"merged_url"`
	PostedAt       time.Time `json:"posted_at"`
}

// PostHistory is the ordered sequence of records as persisted by the S3
// tracker backend.
type PostHistory struct {
	UpdatedAt time.Time    `json:"updated_at"`
	Items     []PostRecord `json:"items"`
}
