package tracker

import (
	"context"
	"fmt"
	"time"

	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
	"quote-video-poster/internal/s3"
)

// S3Store keeps the history as a JSON object in the media bucket, next to the
// media it describes. Useful when runs happen on hosts with no shared disk.
type S3Store struct {
	s3  s3.Client
	key string
	log *logging.Logger
}

func NewS3Store(s3c s3.Client, key string, log *logging.Logger) *S3Store {
	return &S3Store{s3: s3c, key: key, log: log}
}

func (s *S3Store) All(ctx context.Context) ([]model.PostRecord, error) {
	var hist model.PostHistory
	found, err := s.s3.ReadJSON(ctx, s.key, &hist)
	if err != nil {
		s.log.Warnf("tracker: %s unreadable, starting with an empty history (%v)", s.key, err)
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return hist.Items, nil
}

func (s *S3Store) Append(ctx context.Context, rec model.PostRecord) error {
	recs, err := s.All(ctx)
	if err != nil {
		return err
	}
	hist := model.PostHistory{
		UpdatedAt: time.Now(),
		Items:     append(recs, rec),
	}
	if err := s.s3.WriteJSON(ctx, s.key, &hist); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}
