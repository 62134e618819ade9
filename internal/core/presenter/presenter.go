package presenter

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"mindful/internal/core/model"
	"mindful/internal/core/scheduler"

	"github.com/jonboulle/clockwork"
)

const (
	ActionDone      = "Done"
	ThankYouMessage = "Great! Thanks for taking a break. 👍"
	ReminderTooltip = "Click when done"
	StatusTooltip   = "Click to customize Mindful Coding settings"
)

const (
	DefaultCooldown  = 50 * time.Second
	DefaultHideAfter = 5 * time.Second
)

var (
	// ErrNoSurface is returned when a reminder fires without a display.
	ErrNoSurface = errors.New("presenter: no presentation surface")
	// ErrNoState is returned when a popup fires without a state store.
	ErrNoState = errors.New("presenter: no state store")
)

// Options tunes presenter timings.
type Options struct {
	Cooldown  time.Duration
	HideAfter time.Duration
}

// Presenter decides how a fired reminder is displayed.
type Presenter struct {
	mu           sync.Mutex
	clock        clockwork.Clock
	surface      Surface
	state        StateStore
	options      Options
	liveMode     func() model.ReminderMode
	reminderHide clockwork.Timer
	statusHide   clockwork.Timer
	popupOpen    bool
	ctx          context.Context
	cancel       context.CancelFunc
	prompts      sync.WaitGroup
}

// New creates a Presenter. A nil clock means the real clock.
func New(clock clockwork.Clock, surface Surface, state StateStore, options Options) *Presenter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if options.Cooldown <= 0 {
		options.Cooldown = DefaultCooldown
	}
	if options.HideAfter <= 0 {
		options.HideAfter = DefaultHideAfter
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Presenter{
		clock:   clock,
		surface: surface,
		state:   state,
		options: options,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetModeSource injects the live mode consulted when a notification is
// answered.
func (presenter *Presenter) SetModeSource(source func() model.ReminderMode) {
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.liveMode = source
}

// Present shows a fired reminder according to mode.
func (presenter *Presenter) Present(kind model.ReminderKind, mode model.ReminderMode, message string) error {
	if mode == model.ModeNone {
		return nil
	}
	if presenter.surface == nil {
		return ErrNoSurface
	}
	if message == "" {
		message = kind.Message()
	}

	switch mode {
	case model.ModeStatusBar:
		presenter.mu.Lock()
		presenter.stopHideLocked(&presenter.reminderHide)
		presenter.surface.ShowReminder(Indicator{Icon: IconClock, Text: message, Tooltip: ReminderTooltip})
		presenter.mu.Unlock()
		return nil
	case model.ModeAnnoyingPopup:
		return presenter.presentPopup(message)
	default:
		presenter.prompt(Prompt{Message: message, Actions: []string{ActionDone}}, func(choice string) {
			if choice != ActionDone || presenter.currentMode() != model.ModeNotification {
				return
			}
			presenter.Acknowledge()
		})
		return nil
	}
}

// presentPopup shows at most one modal at a time. Fires while a popup is
// still open are dropped like fires inside the cooldown.
func (presenter *Presenter) presentPopup(message string) error {
	if presenter.state == nil {
		return ErrNoState
	}

	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	if presenter.popupOpen {
		return nil
	}
	now := presenter.clock.Now().UnixMilli()
	last, err := presenter.state.Int64(model.StateLastPopupTimestamp)
	if err != nil {
		log.Printf("read last popup timestamp: %v", err)
		last = 0
	}
	if now-last <= presenter.options.Cooldown.Milliseconds() {
		return nil
	}

	presenter.popupOpen = true
	presenter.prompt(Prompt{Message: message, Modal: true, Actions: []string{ActionDone}}, func(choice string) {
		if choice == ActionDone {
			if err := presenter.state.SetInt64(model.StateLastPopupTimestamp, presenter.clock.Now().UnixMilli()); err != nil {
				log.Printf("store last popup timestamp: %v", err)
			}
		}
		presenter.mu.Lock()
		presenter.popupOpen = false
		presenter.mu.Unlock()
		if choice == ActionDone {
			presenter.Acknowledge()
		}
	})
	return nil
}

// Acknowledge shows the thank-you message in the reminder indicator and hides
// it after HideAfter. A new acknowledgment restarts the window.
func (presenter *Presenter) Acknowledge() {
	if presenter.surface == nil {
		log.Printf("acknowledge: %v", ErrNoSurface)
		return
	}
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.surface.ShowReminder(Indicator{Icon: IconCheck, Text: ThankYouMessage})
	presenter.scheduleHideLocked(&presenter.reminderHide, presenter.surface.HideReminder)
}

// Dismiss hides the reminder indicator and acknowledges the break.
func (presenter *Presenter) Dismiss() {
	if presenter.surface == nil {
		log.Printf("dismiss: %v", ErrNoSurface)
		return
	}
	presenter.mu.Lock()
	presenter.stopHideLocked(&presenter.reminderHide)
	presenter.surface.HideReminder()
	presenter.mu.Unlock()
	presenter.Acknowledge()
}

// ShowStatus renders the idle status indicator and hides it after HideAfter.
func (presenter *Presenter) ShowStatus(status scheduler.Status) {
	if presenter.surface == nil {
		log.Printf("show status %s: %v", status, ErrNoSurface)
		return
	}
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.surface.ShowStatus(Indicator{Icon: IconGear, Text: StatusText(status), Tooltip: StatusTooltip})
	presenter.scheduleHideLocked(&presenter.statusHide, presenter.surface.HideStatus)
}

// HideStatus hides the idle status indicator immediately.
func (presenter *Presenter) HideStatus() {
	if presenter.surface == nil {
		return
	}
	presenter.mu.Lock()
	defer presenter.mu.Unlock()
	presenter.stopHideLocked(&presenter.statusHide)
	presenter.surface.HideStatus()
}

// Wait blocks until every outstanding prompt has been answered.
func (presenter *Presenter) Wait() {
	presenter.prompts.Wait()
}

// Close cancels outstanding prompts and pending hide timers.
func (presenter *Presenter) Close() {
	presenter.cancel()
	presenter.mu.Lock()
	presenter.stopHideLocked(&presenter.reminderHide)
	presenter.stopHideLocked(&presenter.statusHide)
	presenter.mu.Unlock()
	presenter.prompts.Wait()
}

// StatusText returns the idle status wording.
func StatusText(status scheduler.Status) string {
	switch status {
	case scheduler.StatusDisabled:
		return "Mindful Coding is disabled"
	case scheduler.StatusUpdated:
		return "Mindful Coding settings updated"
	default:
		return "Mindful Coding is active. Click to customize."
	}
}

// prompt runs the prompt in its own goroutine. onAnswer always runs, with an
// empty choice when the prompt failed or was cancelled.
func (presenter *Presenter) prompt(prompt Prompt, onAnswer func(choice string)) {
	presenter.prompts.Add(1)
	go func() {
		defer presenter.prompts.Done()
		choice, err := presenter.surface.Prompt(presenter.ctx, prompt)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("reminder prompt: %v", err)
			}
			choice = ""
		}
		onAnswer(choice)
	}()
}

func (presenter *Presenter) currentMode() model.ReminderMode {
	presenter.mu.Lock()
	source := presenter.liveMode
	presenter.mu.Unlock()
	if source == nil {
		return model.ModeNotification
	}
	return source()
}

// scheduleHideLocked replaces the pending hide action held in slot.
func (presenter *Presenter) scheduleHideLocked(slot *clockwork.Timer, hide func()) {
	presenter.stopHideLocked(slot)
	var timer clockwork.Timer
	timer = presenter.clock.AfterFunc(presenter.options.HideAfter, func() {
		presenter.mu.Lock()
		defer presenter.mu.Unlock()
		if *slot != timer {
			return
		}
		*slot = nil
		hide()
	})
	*slot = timer
}

func (presenter *Presenter) stopHideLocked(slot *clockwork.Timer) {
	if *slot != nil {
		(*slot).Stop()
		*slot = nil
	}
}
