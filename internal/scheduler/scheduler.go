// Package scheduler runs the publish pipeline on a cron expression for
// deployments without an external scheduler.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"quote-video-poster/internal/logging"
)

type Runner func(ctx context.Context) error

type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger
	ctx  context.Context
}

func New(spec string, run Runner, log *logging.Logger) (*Scheduler, error) {
	// Overlapping runs would race on the tracker, so a tick that fires while
	// the previous run is still going is skipped.
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
	}
	_, err := s.cron.AddFunc(spec, func() {
		log.Infof("scheduler: tick, starting publish run")
		if err := run(s.jobCtx()); err != nil {
			log.Errorf("scheduler: run failed: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// jobCtx is the context passed to Run, so cancelling it reaches in-flight
// jobs. Jobs only fire after Start, which Run calls after setting s.ctx.
func (s *Scheduler) jobCtx() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

// Run blocks until ctx is cancelled, then waits briefly for an in-flight job.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-time.After(30 * time.Second):
		return errors.New("cron stop timeout")
	}
}
