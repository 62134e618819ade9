package presenter

import "context"

// Icon is the glyph rendered in front of an indicator text.
type Icon string

const (
	IconClock Icon = "clock"
	IconCheck Icon = "check"
	IconGear  Icon = "gear"
)

// Indicator is the content of a single-slot status widget.
type Indicator struct {
	Icon    Icon
	Text    string
	Tooltip string
}

// Prompt describes a question shown to the user.
type Prompt struct {
	Message string
	Modal   bool
	Actions []string
}

// Surface is the display the presenter talks to.
type Surface interface {
	ShowReminder(indicator Indicator)
	HideReminder()
	ShowStatus(indicator Indicator)
	HideStatus()
	// Prompt blocks until the user picks an action. An empty choice means the
	// prompt was closed without one.
	Prompt(ctx context.Context, prompt Prompt) (string, error)
}

// StateStore persists process state across sessions.
type StateStore interface {
	Bool(key string) (bool, error)
	SetBool(key string, value bool) error
	Int64(key string) (int64, error)
	SetInt64(key string, value int64) error
}
