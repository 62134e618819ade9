package scheduler

import (
	"time"

	"mindful/internal/core/model"
)

// Event is emitted each time a reminder timer elapses.
type Event struct {
	Kind    model.ReminderKind
	Message string
	Period  time.Duration
	At      time.Time
}

// Status is the scheduler state shown by the idle status indicator.
type Status string

const (
	StatusDisabled Status = "disabled"
	StatusActive   Status = "active"
	StatusUpdated  Status = "updated"
)

// StatusReporter receives the idle status when Start creates no timers.
type StatusReporter interface {
	ShowStatus(status Status)
}
