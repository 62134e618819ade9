package reconciler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"mindful/internal/core/model"
	"mindful/internal/core/presenter"
	"mindful/internal/core/scheduler"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// ConfigProvider reads and writes the user configuration. Write methods
// return the recognized keys whose value changed.
type ConfigProvider interface {
	Settings() (model.Settings, error)
	ModeConfigured() (bool, error)
	Save(settings model.Settings) ([]string, error)
	SetMode(mode model.ReminderMode) ([]string, error)
	Reset() ([]string, error)
}

// Reconciler keeps the scheduler in line with configuration and routes fired
// reminders to the presenter.
type Reconciler struct {
	mu          sync.Mutex
	config      ConfigProvider
	state       presenter.StateStore
	surface     presenter.Surface
	scheduler   *scheduler.Scheduler
	presenter   *presenter.Presenter
	idleChecker IdleChecker
	generation  uint64
	events      <-chan scheduler.Event
}

// New wires a reconciler around an existing scheduler and presenter.
func New(config ConfigProvider, state presenter.StateStore, surface presenter.Surface, sched *scheduler.Scheduler, pres *presenter.Presenter) *Reconciler {
	pres.SetModeSource(sched.Mode)
	return &Reconciler{
		config:    config,
		state:     state,
		surface:   surface,
		scheduler: sched,
		presenter: pres,
		events:    sched.Subscribe(8),
	}
}

// SetIdleChecker injects an idle checker used when skipWhenIdle is on.
func (reconciler *Reconciler) SetIdleChecker(checker IdleChecker) {
	reconciler.mu.Lock()
	defer reconciler.mu.Unlock()
	reconciler.idleChecker = checker
}

// OnConfigurationChanged restarts the scheduler when a recognized key
// changed and reports whether it did.
func (reconciler *Reconciler) OnConfigurationChanged(changedKeys []string) bool {
	recognized := false
	for _, key := range changedKeys {
		if model.IsRecognizedKey(key) {
			recognized = true
			break
		}
	}
	if !recognized {
		return false
	}

	reconciler.mu.Lock()
	reconciler.generation++
	reconciler.mu.Unlock()

	reconciler.setup(true)
	return true
}

// ApplySettings persists settings edited by the user and reconciles.
func (reconciler *Reconciler) ApplySettings(settings model.Settings) error {
	changed, err := reconciler.config.Save(settings)
	if err != nil {
		return err
	}
	reconciler.OnConfigurationChanged(changed)
	return nil
}

// Run serializes fired reminders and configuration changes until ctx is done
// or the scheduler is closed.
func (reconciler *Reconciler) Run(ctx context.Context, changes <-chan []string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-reconciler.events:
			if !ok {
				return
			}
			reconciler.handleFire(event)
		case keys, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			reconciler.OnConfigurationChanged(keys)
		}
	}
}

// DismissReminder hides the reminder indicator and thanks the user.
func (reconciler *Reconciler) DismissReminder() {
	reconciler.presenter.Dismiss()
}

// OpenSettings hides the idle status before the settings UI opens.
func (reconciler *Reconciler) OpenSettings() {
	reconciler.presenter.HideStatus()
}

// Settings returns the current configuration, defaults on error.
func (reconciler *Reconciler) Settings() model.Settings {
	settings, err := reconciler.config.Settings()
	if err != nil {
		log.Printf("read settings: %v", err)
		return model.DefaultSettings()
	}
	return settings
}

// Shutdown clears every timer and cancels pending presentation work.
func (reconciler *Reconciler) Shutdown() {
	reconciler.scheduler.Close()
	reconciler.presenter.Close()
}

func (reconciler *Reconciler) setup(updated bool) {
	settings := reconciler.Settings()
	if !reconciler.scheduler.Restart(settings) {
		return
	}
	if updated {
		reconciler.presenter.ShowStatus(scheduler.StatusUpdated)
		return
	}
	reconciler.presenter.ShowStatus(scheduler.StatusActive)
}

func (reconciler *Reconciler) handleFire(event scheduler.Event) {
	if reconciler.userIdleFor(event.Period) {
		return
	}
	mode := reconciler.scheduler.Mode()
	if err := reconciler.presenter.Present(event.Kind, mode, event.Message); err != nil {
		log.Printf("drop %s reminder: %v", event.Kind, err)
	}
}

func (reconciler *Reconciler) userIdleFor(period time.Duration) bool {
	reconciler.mu.Lock()
	checker := reconciler.idleChecker
	reconciler.mu.Unlock()
	if checker == nil || !reconciler.Settings().SkipWhenIdle {
		return false
	}

	idle, err := checker.IdleDuration()
	if err != nil {
		log.Printf("idle check: %v", err)
		if errors.Is(err, ErrIdleUnsupported) {
			reconciler.SetIdleChecker(nil)
		}
		return false
	}
	return idle >= period
}
