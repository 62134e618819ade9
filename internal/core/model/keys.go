package model

// Configuration keys that trigger reconciliation.
const (
	KeyReminderType             = "reminderType"
	KeyWindowGazeInterval       = "windowGazeInterval"
	KeyStretchInterval          = "stretchInterval"
	KeyEnableWindowGazeReminder = "enableWindowGazeReminder"
	KeyEnableStretchReminder    = "enableStretchReminder"
)

// KeySkipWhenIdle is read at fire time and never triggers reconciliation.
const KeySkipWhenIdle = "skipWhenIdle"

// RecognizedKeys lists the keys whose change restarts the scheduler.
var RecognizedKeys = []string{
	KeyReminderType,
	KeyWindowGazeInterval,
	KeyStretchInterval,
	KeyEnableWindowGazeReminder,
	KeyEnableStretchReminder,
}

// IsRecognizedKey reports whether key is one of RecognizedKeys.
func IsRecognizedKey(key string) bool {
	for _, recognized := range RecognizedKeys {
		if recognized == key {
			return true
		}
	}
	return false
}

// Persisted process state keys.
const (
	StatePromptedForSettings = "hasBeenPromptedForReminderSettings"
	StateLastPopupTimestamp  = "mindfulCoding.lastPopupTimestamp"
)
