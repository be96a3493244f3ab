// Package jobs runs the periodic identity revalidation while the local
// server is up, so a remotely revoked session is noticed without a
// restart.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"matdepot/authctl/internal/auth"
)

type Scheduler struct {
	cron    *cron.Cron
	manager *auth.Manager
	log     zerolog.Logger
}

func NewScheduler(manager *auth.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		manager: manager,
		log:     log,
	}
}

func (s *Scheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.revalidate); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits briefly for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) revalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.manager.Revalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("identity revalidation failed")
	}
}
