package domain

import "errors"

var (
	// ErrNoData indicates the upstream source returned an empty series.
	ErrNoData = errors.New("no data returned")

	// ErrPostNotFound indicates no post exists for the requested slot or ID.
	ErrPostNotFound = errors.New("post not found")

	// ErrSlotTaken indicates another instance already claimed the slot.
	ErrSlotTaken = errors.New("slot already claimed")

	// ErrLoginFailed indicates blog credentials were rejected. Permanent:
	// retrying with the same credentials cannot succeed.
	ErrLoginFailed = errors.New("blog login failed")

	// ErrQuietWindow indicates the run fell inside the weekend quiet window.
	ErrQuietWindow = errors.New("inside weekend quiet window")
)
