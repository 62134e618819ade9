package scheduler

import (
	"log"
	"sync"
	"time"

	"mindful/internal/core/model"

	"github.com/jonboulle/clockwork"
)

type reminderTimer struct {
	ticker clockwork.Ticker
	stopCh chan struct{}
	period time.Duration
}

// Scheduler owns one periodic timer per enabled reminder kind.
type Scheduler struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	reporter   StatusReporter
	mode       model.ReminderMode
	timers     map[model.ReminderKind]*reminderTimer
	generation uint64
	events     []chan Event
	closed     bool
}

// New creates a stopped Scheduler. A nil clock means the real clock.
func New(clock clockwork.Clock, reporter StatusReporter) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		clock:    clock,
		reporter: reporter,
		mode:     model.ModeNone,
		timers:   make(map[model.ReminderKind]*reminderTimer),
	}
}

// Subscribe registers a new observer channel for fired reminders.
func (scheduler *Scheduler) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	scheduler.mu.Lock()
	if scheduler.closed {
		close(ch)
	} else {
		scheduler.events = append(scheduler.events, ch)
	}
	scheduler.mu.Unlock()
	return ch
}

// Start creates a timer for each enabled kind and reports whether any timer
// is running. Existing timers are cleared first, so Start never accumulates
// duplicates. With mode None or no enabled kind the reporter receives
// StatusDisabled.
func (scheduler *Scheduler) Start(settings model.Settings) bool {
	scheduler.mu.Lock()
	if scheduler.closed {
		scheduler.mu.Unlock()
		return false
	}
	scheduler.clearLocked()
	scheduler.mode = settings.Mode

	kinds := settings.EnabledKinds()
	for _, kind := range kinds {
		scheduler.startTimerLocked(kind, settings.Interval(kind).Period())
	}
	reporter := scheduler.reporter
	scheduler.mu.Unlock()

	if len(kinds) == 0 {
		if reporter != nil {
			reporter.ShowStatus(StatusDisabled)
		}
		return false
	}
	return true
}

// Restart clears every timer and starts again with fresh settings.
func (scheduler *Scheduler) Restart(settings model.Settings) bool {
	return scheduler.Start(settings)
}

// Stop clears all timers. Safe to call repeatedly.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	scheduler.clearLocked()
	scheduler.mu.Unlock()
}

// Close stops all timers and closes observer channels.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	if scheduler.closed {
		scheduler.mu.Unlock()
		return
	}
	scheduler.clearLocked()
	scheduler.closed = true
	events := scheduler.events
	scheduler.events = nil
	scheduler.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Mode returns the mode of the last Start. Presentation reads it at fire time.
func (scheduler *Scheduler) Mode() model.ReminderMode {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.mode
}

// TimerCount returns the number of live timers.
func (scheduler *Scheduler) TimerCount() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return len(scheduler.timers)
}

// Period returns the period of a live timer.
func (scheduler *Scheduler) Period(kind model.ReminderKind) (time.Duration, bool) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	timer, ok := scheduler.timers[kind]
	if !ok {
		return 0, false
	}
	return timer.period, true
}

func (scheduler *Scheduler) startTimerLocked(kind model.ReminderKind, period time.Duration) {
	timer := &reminderTimer{
		ticker: scheduler.clock.NewTicker(period),
		stopCh: make(chan struct{}),
		period: period,
	}
	scheduler.timers[kind] = timer
	go scheduler.run(kind, scheduler.generation, timer)
}

// clearLocked stops every ticker synchronously and bumps the generation so a
// tick already read by a timer goroutine is discarded in fire.
func (scheduler *Scheduler) clearLocked() {
	for kind, timer := range scheduler.timers {
		timer.ticker.Stop()
		close(timer.stopCh)
		delete(scheduler.timers, kind)
	}
	scheduler.generation++
}

func (scheduler *Scheduler) run(kind model.ReminderKind, generation uint64, timer *reminderTimer) {
	for {
		select {
		case <-timer.stopCh:
			return
		case tickTime := <-timer.ticker.Chan():
			scheduler.fire(kind, generation, timer.period, tickTime)
		}
	}
}

func (scheduler *Scheduler) fire(kind model.ReminderKind, generation uint64, period time.Duration, tickTime time.Time) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.closed || generation != scheduler.generation {
		return
	}
	scheduler.emitLocked(Event{
		Kind:    kind,
		Message: kind.Message(),
		Period:  period,
		At:      tickTime,
	})
}

func (scheduler *Scheduler) emitLocked(event Event) {
	for _, ch := range scheduler.events {
		select {
		case ch <- event:
		default:
			log.Printf("scheduler: subscriber full, dropped %s reminder", event.Kind)
		}
	}
}
