package scheduler

import (
	"context"
	"time"

	"agroshare-backend/internal/rating"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the nightly rating recompute so coefficient or formula
// changes reach every farmer without waiting for a diagnosis edit.
type Scheduler struct {
	cron   *cron.Cron
	rating *rating.Service
	spec   string
}

func New(ratingSvc *rating.Service, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		rating: ratingSvc,
		spec:   spec,
	}
}

// Start registers the recompute job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.recomputeRatings); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("Rating recompute scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Rating recompute scheduler stopped")
}

func (s *Scheduler) recomputeRatings() {
	start := time.Now()
	done, err := s.rating.RecomputeAll(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("Scheduled rating recompute failed")
		return
	}
	log.Info().Int("farmers", done).Dur("took", time.Since(start)).Msg("Scheduled rating recompute finished")
}
