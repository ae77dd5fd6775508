package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/seyoungseyoung/blog-KRW/internal/metrics"
)

// Elector is the leadership surface the runner needs. Only the leader
// fires posting slots; followers keep trying to take over.
type Elector interface {
	TryBecomeLeader(ctx context.Context) (bool, error)
	RenewLease(ctx context.Context) error
	ReleaseLease(ctx context.Context) error
}

// RunFunc executes one posting slot.
type RunFunc func(ctx context.Context, slot Slot) error

// Runner waits for posting slots and fires them while holding leadership.
type Runner struct {
	schedule *Schedule
	clock    clockwork.Clock
	elector  Elector
	leaseTTL time.Duration
	run      RunFunc
}

// NewRunner creates a runner. leaseTTL is the leadership lease duration;
// the lease is renewed at half that interval.
func NewRunner(schedule *Schedule, clock clockwork.Clock, elector Elector, leaseTTL time.Duration, run RunFunc) *Runner {
	return &Runner{
		schedule: schedule,
		clock:    clock,
		elector:  elector,
		leaseTTL: leaseTTL,
		run:      run,
	}
}

// Start blocks until ctx is done, firing each slot at its time. Lease
// renewal runs in between slots; losing the lease turns this instance
// back into a follower until it wins another election.
func (r *Runner) Start(ctx context.Context) {
	defer r.releaseOnExit()

	leader := false
	for {
		slot := r.schedule.NextSlot(r.clock.Now())
		metrics.SchedulerNextRunTimestamp.Set(float64(slot.At.Unix()))
		slog.InfoContext(ctx, "Next posting slot planned", "slot", slot.ID(), "at", slot.At)

		if !r.waitUntil(ctx, slot.At, &leader) {
			return
		}

		leader = r.ensureLeader(ctx, leader)
		if !leader {
			slog.InfoContext(ctx, "Not leader, skipping slot", "slot", slot.ID())
			continue
		}

		if err := r.run(ctx, slot); err != nil {
			slog.ErrorContext(ctx, "Slot run failed", "slot", slot.ID(), "error", err)
		}
	}
}

// waitUntil sleeps until deadline while renewing the lease. Returns false
// when ctx ended.
func (r *Runner) waitUntil(ctx context.Context, deadline time.Time, leader *bool) bool {
	renewInterval := r.leaseTTL / 2

	for {
		now := r.clock.Now()
		if !now.Before(deadline) {
			return true
		}

		wait := deadline.Sub(now)
		if *leader && wait > renewInterval {
			wait = renewInterval
		}

		select {
		case <-ctx.Done():
			return false
		case <-r.clock.After(wait):
		}

		if *leader && r.clock.Now().Before(deadline) {
			if err := r.elector.RenewLease(ctx); err != nil {
				slog.WarnContext(ctx, "Lease renewal failed, dropping to follower", "error", err)
				*leader = false
			}
		}
	}
}

func (r *Runner) ensureLeader(ctx context.Context, leader bool) bool {
	if leader {
		if err := r.elector.RenewLease(ctx); err == nil {
			return true
		}
	}

	became, err := r.elector.TryBecomeLeader(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Leader election failed", "error", err)
		return false
	}
	return became
}

func (r *Runner) releaseOnExit() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.elector.ReleaseLease(ctx); err != nil {
		slog.Warn("Failed to release leadership on shutdown", "error", err)
	}
}
