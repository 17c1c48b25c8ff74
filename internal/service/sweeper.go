package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// Sweeper periodically deletes expired sessions and spent reset tokens.
// Validation already ignores expired rows, so a missed run only delays
// cleanup. Failures are logged and the next run tries again.
type Sweeper struct {
	cron     *cron.Cron
	sessions SessionService
	log      logrus.FieldLogger
}

func NewSweeper(sessions SessionService, schedule string, log logrus.FieldLogger) (*Sweeper, error) {
	s := &Sweeper{
		cron:     cron.New(),
		sessions: sessions,
		log:      log,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Sweeper) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	res, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		s.log.WithError(err).Error("session sweep failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"sessions":     res.Sessions,
		"reset_tokens": res.ResetTokens,
	}).Info("session sweep completed")
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once a running
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}
