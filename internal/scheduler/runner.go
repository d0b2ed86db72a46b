package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/stresssense/stresssense/internal/services"
)

// Runner evaluates recurrence rules on a fixed tick and launches due
// survey instances. Run one per deployment; the launch pass is not
// coordinated across processes.
type Runner struct {
	schedules *services.ScheduleService
	interval  time.Duration
}

func New(schedules *services.ScheduleService, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{schedules: schedules, interval: interval}
}

// Run blocks until ctx is cancelled, evaluating schedules once per tick.
func (r *Runner) Run(ctx context.Context) {
	slog.Info("schedule runner started", "interval", r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// First pass immediately so a restart does not delay launches a
	// whole interval.
	r.tick()
	for {
		select {
		case <-ctx.Done():
			slog.Info("schedule runner stopped")
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Runner) tick() {
	launched, err := r.schedules.RunDue(time.Now().UTC())
	if err != nil {
		slog.Error("schedule pass failed", "error", err)
		return
	}
	for _, l := range launched {
		slog.Info("launched survey instance", "schedule_id", l.ScheduleID, "survey_id", l.SurveyID)
	}
}
