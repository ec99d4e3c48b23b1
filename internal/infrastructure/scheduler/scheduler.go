// Package scheduler drives repeated backup runs from a cron expression.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
}

// New returns a scheduler accepting standard five-field cron expressions.
func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers job under spec. Job errors are handed to onError; a failed
// run never stops the schedule.
func (s *Scheduler) Add(spec string, job func(context.Context) error, onError func(error)) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job(context.Background()); err != nil {
			onError(err)
		}
	})
	return err
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// any in-flight job to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
}
