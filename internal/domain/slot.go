package domain

import "time"

// SlotName identifies which of the configured post times a run belongs to.
type SlotName string

const (
	SlotMorning SlotName = "morning"
	SlotEvening SlotName = "evening"
)

// SlotID builds the slot identity for a given day, e.g. "2026-08-21/morning".
// One post is published per slot ID across all instances.
func SlotID(day time.Time, name SlotName) string {
	return day.Format("2006-01-02") + "/" + string(name)
}
