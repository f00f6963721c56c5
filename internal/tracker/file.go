package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
)

// FileStore keeps the history as a local JSON array, the layout the GitHub
// Actions deployment commits back to the repository between runs.
type FileStore struct {
	path string
	log  *logging.Logger
}

func NewFileStore(path string, log *logging.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) All(ctx context.Context) ([]model.PostRecord, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var recs []model.PostRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		// A corrupt tracker degrades to an empty history rather than killing
		// the run.
		s.log.Warnf("tracker: %s is empty or corrupted, starting with an empty history (%v)", s.path, err)
		return nil, nil
	}
	return recs, nil
}

func (s *FileStore) Append(ctx context.Context, rec model.PostRecord) error {
	recs, err := s.All(ctx)
	if err != nil {
		return err
	}
	recs = append(recs, rec)

	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracker: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
