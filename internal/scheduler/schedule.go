// Package scheduler decides when posting slots fire and drives the
// posting loop on a clock.
package scheduler

import (
	"time"

	"github.com/seyoungseyoung/blog-KRW/internal/domain"
)

// Quiet window boundaries, local to the schedule timezone. FX markets
// close over the weekend, so posts pause from Saturday morning until
// early Monday.
const (
	quietSaturdayStartHour = 10
	quietMondayEndHour     = 5
)

// Schedule holds the two daily posting slots in a fixed timezone.
type Schedule struct {
	loc     *time.Location
	morning time.Duration
	evening time.Duration
}

// NewSchedule creates a schedule from midnight offsets for the morning
// and evening slots.
func NewSchedule(morning, evening time.Duration, loc *time.Location) *Schedule {
	return &Schedule{loc: loc, morning: morning, evening: evening}
}

// InQuietWindow reports whether t falls in the weekend pause:
// Saturday from 10:00, all of Sunday, and Monday before 05:00.
func (s *Schedule) InQuietWindow(t time.Time) bool {
	local := t.In(s.loc)
	switch local.Weekday() {
	case time.Saturday:
		return local.Hour() >= quietSaturdayStartHour
	case time.Sunday:
		return true
	case time.Monday:
		return local.Hour() < quietMondayEndHour
	default:
		return false
	}
}

// Slot is one concrete posting occasion.
type Slot struct {
	Name domain.SlotName
	At   time.Time
}

// ID returns the slot's identity string.
func (s Slot) ID() string {
	return domain.SlotID(s.At, s.Name)
}

// NextSlot returns the first posting slot strictly after t, skipping
// slots inside the quiet window.
func (s *Schedule) NextSlot(t time.Time) Slot {
	local := t.In(s.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)

	for {
		for _, candidate := range []Slot{
			{Name: domain.SlotMorning, At: day.Add(s.morning)},
			{Name: domain.SlotEvening, At: day.Add(s.evening)},
		} {
			if candidate.At.After(local) && !s.InQuietWindow(candidate.At) {
				return candidate
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}
