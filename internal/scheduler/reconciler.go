// Package scheduler runs the periodic passes over mounted views: retrying
// pending reviews and releasing views whose session is gone.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Target is anything holding pending reviews, typically *app.Views.
type Target interface {
	Reconcile(ctx context.Context) int
}

// SweepFunc releases stale views and returns how many it released.
type SweepFunc func(ctx context.Context) int

type Reconciler struct {
	scheduler *gocron.Scheduler
	target    Target
	interval  time.Duration
	timeout   time.Duration

	sweep      SweepFunc
	sweepEvery time.Duration
}

// New builds a reconciler that runs every interval, bounding each pass
// by timeout.
func New(t Target, interval, timeout time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &Reconciler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    t,
		interval:  interval,
		timeout:   timeout,
	}
}

// RunOnce performs a single pass and returns the number of reviews
// confirmed.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	start := time.Now()
	n := r.target.Reconcile(ctx)
	if n > 0 {
		log.Info().Int("confirmed", n).Dur("duration", time.Since(start)).Msg("pending reviews reconciled")
	}
	return n
}

// WithSweep adds a second job running fn every interval. Call before Start.
func (r *Reconciler) WithSweep(fn SweepFunc, every time.Duration) *Reconciler {
	if every <= 0 {
		every = time.Minute
	}
	r.sweep, r.sweepEvery = fn, every
	return r
}

// SweepOnce runs the sweep job once, if one is set.
func (r *Reconciler) SweepOnce(ctx context.Context) int {
	if r.sweep == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	n := r.sweep(ctx)
	if n > 0 {
		log.Info().Int("released", n).Msg("stale views released")
	}
	return n
}

// Start schedules the passes. A run still in progress is never overlapped.
func (r *Reconciler) Start() error {
	_, err := r.scheduler.Every(r.interval).SingletonMode().WaitForSchedule().Do(func() {
		r.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	if r.sweep != nil {
		_, err = r.scheduler.Every(r.sweepEvery).SingletonMode().WaitForSchedule().Do(func() {
			r.SweepOnce(context.Background())
		})
		if err != nil {
			return err
		}
	}
	r.scheduler.StartAsync()
	log.Info().Dur("interval", r.interval).Bool("sweep", r.sweep != nil).Msg("reconciler started")
	return nil
}

func (r *Reconciler) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
