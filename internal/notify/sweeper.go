package notify

// sweeper.go expires idle sessions on a cron schedule.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the sweep every five minutes.
const DefaultSweepSchedule = "@every 5m"

// Sweeper runs Queue.Sweep on a schedule until its context ends.
type Sweeper struct {
	queue    *Queue
	schedule string
	cron     *cron.Cron
}

// NewSweeper validates schedule and prepares a sweeper for q.
func NewSweeper(q *Queue, schedule string) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	s := &Sweeper{queue: q, schedule: schedule, cron: cron.New()}
	if _, err := s.cron.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("notification sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for
// a running sweep to finish.
func (s *Sweeper) Run(ctx context.Context) error {
	slog.Info("notification sweeper started", "schedule", s.schedule)
	s.cron.Start()

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	slog.Info("notification sweeper stopped")
	return nil
}

func (s *Sweeper) runOnce() {
	start := time.Now()
	removed := s.queue.Sweep(start)
	if removed > 0 {
		slog.Info("expired idle notification sessions",
			"sessions_removed", removed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
