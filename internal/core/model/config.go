package model

import (
	"math"
	"strings"
	"time"
)

// ReminderMode selects how a fired reminder is presented.
type ReminderMode string

const (
	ModeNone          ReminderMode = "None"
	ModeNotification  ReminderMode = "Notification"
	ModeStatusBar     ReminderMode = "Status Bar"
	ModeAnnoyingPopup ReminderMode = "Annoying Popup"
)

// Modes lists the selectable modes in prompt order.
var Modes = []ReminderMode{ModeNotification, ModeStatusBar, ModeAnnoyingPopup, ModeNone}

// ParseMode accepts both display ("Status Bar") and compact ("StatusBar")
// spellings, ignoring case. Unknown values report false.
func ParseMode(value string) (ReminderMode, bool) {
	compact := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	for _, mode := range []ReminderMode{ModeNone, ModeNotification, ModeStatusBar, ModeAnnoyingPopup} {
		if compact == strings.ToLower(strings.ReplaceAll(string(mode), " ", "")) {
			return mode, true
		}
	}
	return ModeNone, false
}

// ReminderKind identifies one of the periodic reminders.
type ReminderKind string

const (
	KindWindowGaze ReminderKind = "windowGaze"
	KindStretch    ReminderKind = "stretch"
)

// Kinds lists every reminder kind in scheduling order.
var Kinds = []ReminderKind{KindWindowGaze, KindStretch}

// Message returns the reminder text shown for the kind.
func (kind ReminderKind) Message() string {
	switch kind {
	case KindWindowGaze:
		return "Time to gaze out of a window. 🌳"
	case KindStretch:
		return "Time to stretch. 😺"
	default:
		return ""
	}
}

// MinPeriod is the floor applied to every reminder period.
const MinPeriod = time.Minute

// MaxPeriod caps huge intervals so the conversion to a Duration never
// overflows.
const MaxPeriod = 100 * 365 * 24 * time.Hour

// IntervalConfig describes one periodic reminder.
type IntervalConfig struct {
	Enabled         bool
	IntervalMinutes float64
}

// Period returns IntervalMinutes clamped to [MinPeriod, MaxPeriod]. NaN
// means MinPeriod.
func (config IntervalConfig) Period() time.Duration {
	minutes := config.IntervalMinutes
	if math.IsNaN(minutes) || minutes <= MinPeriod.Minutes() {
		return MinPeriod
	}
	if minutes >= MaxPeriod.Minutes() {
		return MaxPeriod
	}
	return time.Duration(minutes * float64(time.Minute))
}

// Settings is the effective configuration after defaults are applied.
type Settings struct {
	Mode         ReminderMode
	WindowGaze   IntervalConfig
	Stretch      IntervalConfig
	SkipWhenIdle bool
}

const (
	DefaultWindowGazeMinutes = 20
	DefaultStretchMinutes    = 60
)

// DefaultSettings returns the configuration used when nothing is set.
func DefaultSettings() Settings {
	return Settings{
		Mode:       ModeNone,
		WindowGaze: IntervalConfig{Enabled: true, IntervalMinutes: DefaultWindowGazeMinutes},
		Stretch:    IntervalConfig{Enabled: true, IntervalMinutes: DefaultStretchMinutes},
	}
}

// Interval returns the interval configuration of a kind.
func (settings Settings) Interval(kind ReminderKind) IntervalConfig {
	switch kind {
	case KindWindowGaze:
		return settings.WindowGaze
	case KindStretch:
		return settings.Stretch
	default:
		return IntervalConfig{}
	}
}

// EnabledKinds returns the kinds that get a timer. None when mode is None.
func (settings Settings) EnabledKinds() []ReminderKind {
	if settings.Mode == ModeNone {
		return nil
	}
	var kinds []ReminderKind
	for _, kind := range Kinds {
		if settings.Interval(kind).Enabled {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
