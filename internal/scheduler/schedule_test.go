package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

var kst = time.FixedZone("KST", 9*60*60)

func testSchedule() *Schedule {
	return NewSchedule(7*time.Hour+50*time.Minute, 18*time.Hour+50*time.Minute, kst)
}

// kstTime builds a KST timestamp; 2026-08-21 is a Friday.
func kstTime(day, hour, minute int) time.Time {
	return time.Date(2026, 8, day, hour, minute, 0, 0, kst)
}

func TestInQuietWindow(t *testing.T) {
	s := testSchedule()

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"friday evening", kstTime(21, 19, 0), false},
		{"saturday before ten", kstTime(22, 9, 59), false},
		{"saturday at ten", kstTime(22, 10, 0), true},
		{"sunday", kstTime(23, 12, 0), true},
		{"monday early", kstTime(24, 4, 59), true},
		{"monday five", kstTime(24, 5, 0), false},
		{"wednesday", kstTime(26, 12, 0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.InQuietWindow(tc.at))
		})
	}
}

func TestNextSlot_SameDay(t *testing.T) {
	s := testSchedule()

	slot := s.NextSlot(kstTime(21, 6, 0))
	assert.Equal(t, domain.SlotMorning, slot.Name)
	assert.Equal(t, kstTime(21, 7, 50), slot.At)
	assert.Equal(t, "2026-08-21/morning", slot.ID())

	slot = s.NextSlot(kstTime(21, 8, 0))
	assert.Equal(t, domain.SlotEvening, slot.Name)
	assert.Equal(t, kstTime(21, 18, 50), slot.At)
}

func TestNextSlot_SaturdayMorningStillFires(t *testing.T) {
	s := testSchedule()

	// Friday night rolls into the Saturday morning slot, which is before
	// the quiet window starts.
	slot := s.NextSlot(kstTime(21, 19, 0))
	assert.Equal(t, domain.SlotMorning, slot.Name)
	assert.Equal(t, kstTime(22, 7, 50), slot.At)
}

func TestNextSlot_SkipsQuietWindow(t *testing.T) {
	s := testSchedule()

	// Saturday midday: the Saturday evening and all Sunday slots are
	// quiet, so the next slot is Monday morning.
	slot := s.NextSlot(kstTime(22, 11, 0))
	assert.Equal(t, domain.SlotMorning, slot.Name)
	assert.Equal(t, kstTime(24, 7, 50), slot.At)
	assert.Equal(t, "2026-08-24/morning", slot.ID())
}

func TestNextSlot_ExactSlotTimeMovesOn(t *testing.T) {
	s := testSchedule()

	slot := s.NextSlot(kstTime(21, 7, 50))
	assert.Equal(t, domain.SlotEvening, slot.Name)
}

type stubElector struct {
	leader   atomic.Bool
	released atomic.Bool
}

func (e *stubElector) TryBecomeLeader(context.Context) (bool, error) {
	return e.leader.Load(), nil
}

func (e *stubElector) RenewLease(context.Context) error {
	if e.leader.Load() {
		return nil
	}
	return ErrRenewDenied
}

func (e *stubElector) ReleaseLease(context.Context) error {
	e.released.Store(true)
	return nil
}

var ErrRenewDenied = assert.AnError

func TestRunner_FiresSlotAsLeader(t *testing.T) {
	clock := clockwork.NewFakeClockAt(kstTime(21, 6, 0))
	elector := &stubElector{}
	elector.leader.Store(true)

	fired := make(chan Slot, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(testSchedule(), clock, elector, time.Minute, func(_ context.Context, slot Slot) error {
		fired <- slot
		cancel()
		return nil
	})

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(110 * time.Minute)

	select {
	case slot := <-fired:
		assert.Equal(t, "2026-08-21/morning", slot.ID())
	case <-time.After(5 * time.Second):
		t.Fatal("slot did not fire")
	}

	<-done
	assert.True(t, elector.released.Load())
}

func TestRunner_FollowerSkipsSlot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(kstTime(21, 6, 0))
	elector := &stubElector{}

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := NewRunner(testSchedule(), clock, elector, time.Hour, func(context.Context, Slot) error {
		runs.Add(1)
		return nil
	})

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	// Fire the morning slot while not leader.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(110 * time.Minute)

	// Runner loops on to wait for the evening slot.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(0), runs.Load())

	cancel()
	<-done
}
