package presenter

import (
	"context"
	"sync"
	"testing"
	"time"

	"mindful/internal/core/model"
	"mindful/internal/core/scheduler"

	"github.com/jonboulle/clockwork"
)

type fakeSurface struct {
	mu            sync.Mutex
	answer        string
	block         bool
	reminder      *Indicator
	status        *Indicator
	reminderShown []Indicator
	reminderHides int
	statusHides   int
	prompts       []Prompt
}

func (surface *fakeSurface) ShowReminder(indicator Indicator) {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	surface.reminder = &indicator
	surface.reminderShown = append(surface.reminderShown, indicator)
}

func (surface *fakeSurface) HideReminder() {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	surface.reminder = nil
	surface.reminderHides++
}

func (surface *fakeSurface) ShowStatus(indicator Indicator) {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	surface.status = &indicator
}

func (surface *fakeSurface) HideStatus() {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	surface.status = nil
	surface.statusHides++
}

func (surface *fakeSurface) Prompt(ctx context.Context, prompt Prompt) (string, error) {
	surface.mu.Lock()
	surface.prompts = append(surface.prompts, prompt)
	block := surface.block
	answer := surface.answer
	surface.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return answer, nil
}

func (surface *fakeSurface) promptCount() int {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	return len(surface.prompts)
}

func (surface *fakeSurface) hides() (int, int) {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	return surface.reminderHides, surface.statusHides
}

func (surface *fakeSurface) current() (*Indicator, *Indicator) {
	surface.mu.Lock()
	defer surface.mu.Unlock()
	return surface.reminder, surface.status
}

type memoryState struct {
	mu     sync.Mutex
	bools  map[string]bool
	values map[string]int64
}

func newMemoryState() *memoryState {
	return &memoryState{bools: map[string]bool{}, values: map[string]int64{}}
}

func (state *memoryState) Bool(key string) (bool, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.bools[key], nil
}

func (state *memoryState) SetBool(key string, value bool) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.bools[key] = value
	return nil
}

func (state *memoryState) Int64(key string) (int64, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.values[key], nil
}

func (state *memoryState) SetInt64(key string, value int64) error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.values[key] = value
	return nil
}

func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func settle() {
	time.Sleep(50 * time.Millisecond)
}

func newTestPresenter(surface Surface, state StateStore) (*Presenter, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return New(clock, surface, state, Options{}), clock
}

func TestModeNoneShowsNothing(t *testing.T) {
	surface := &fakeSurface{answer: ActionDone}
	state := newMemoryState()
	_ = state.SetInt64(model.StateLastPopupTimestamp, 42)
	presenter, _ := newTestPresenter(surface, state)
	defer presenter.Close()

	for _, kind := range model.Kinds {
		if err := presenter.Present(kind, model.ModeNone, kind.Message()); err != nil {
			t.Fatalf("present: %v", err)
		}
	}
	presenter.Wait()

	reminder, status := surface.current()
	if reminder != nil || status != nil || surface.promptCount() != 0 {
		t.Fatalf("mode None must not display anything")
	}
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != 42 {
		t.Fatalf("timestamp mutated to %d", value)
	}
}

func TestStatusBarReminderStaysVisible(t *testing.T) {
	surface := &fakeSurface{}
	presenter, clock := newTestPresenter(surface, newMemoryState())
	defer presenter.Close()

	if err := presenter.Present(model.KindStretch, model.ModeStatusBar, ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	reminder, _ := surface.current()
	if reminder == nil || reminder.Icon != IconClock || reminder.Text != model.KindStretch.Message() {
		t.Fatalf("unexpected reminder indicator %+v", reminder)
	}

	clock.Advance(time.Hour)
	settle()
	if reminder, _ := surface.current(); reminder == nil {
		t.Fatalf("status bar reminder must not auto-hide")
	}
	if surface.promptCount() != 0 {
		t.Fatalf("status bar mode must not prompt")
	}
}

func TestDismissShowsThankYouThenHides(t *testing.T) {
	surface := &fakeSurface{}
	presenter, clock := newTestPresenter(surface, newMemoryState())
	defer presenter.Close()

	_ = presenter.Present(model.KindWindowGaze, model.ModeStatusBar, "")
	presenter.Dismiss()

	reminder, _ := surface.current()
	if reminder == nil || reminder.Icon != IconCheck || reminder.Text != ThankYouMessage {
		t.Fatalf("expected thank-you indicator, got %+v", reminder)
	}

	clock.Advance(DefaultHideAfter - time.Millisecond)
	settle()
	if reminder, _ := surface.current(); reminder == nil {
		t.Fatalf("thank-you hidden too early")
	}

	clock.Advance(time.Millisecond)
	waitFor(t, "thank-you hide", func() bool {
		reminder, _ := surface.current()
		return reminder == nil
	})

	reminderHides, _ := surface.hides()
	clock.Advance(time.Minute)
	settle()
	if again, _ := surface.hides(); again != reminderHides {
		t.Fatalf("hide re-triggered without a new dismissal")
	}
}

func TestSecondAcknowledgmentRestartsHideWindow(t *testing.T) {
	surface := &fakeSurface{}
	presenter, clock := newTestPresenter(surface, newMemoryState())
	defer presenter.Close()

	presenter.Acknowledge()
	clock.Advance(3 * time.Second)
	presenter.Acknowledge()

	clock.Advance(3 * time.Second)
	settle()
	if reminderHides, _ := surface.hides(); reminderHides != 0 {
		t.Fatalf("first hide should have been cancelled, got %d hides", reminderHides)
	}

	clock.Advance(2 * time.Second)
	waitFor(t, "single hide", func() bool {
		reminderHides, _ := surface.hides()
		return reminderHides == 1
	})
	clock.Advance(10 * time.Second)
	settle()
	if reminderHides, _ := surface.hides(); reminderHides != 1 {
		t.Fatalf("expected exactly one hide, got %d", reminderHides)
	}
}

func TestPopupCooldown(t *testing.T) {
	surface := &fakeSurface{answer: ActionDone}
	state := newMemoryState()
	presenter, clock := newTestPresenter(surface, state)
	defer presenter.Close()

	_ = presenter.Present(model.KindWindowGaze, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	dismissedAt := clock.Now().UnixMilli()
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != dismissedAt {
		t.Fatalf("expected timestamp %d, got %d", dismissedAt, value)
	}
	if !surface.prompts[0].Modal {
		t.Fatalf("popup prompt must be modal")
	}

	clock.Advance(10 * time.Second)
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	if got := surface.promptCount(); got != 1 {
		t.Fatalf("expected one modal within cooldown, got %d", got)
	}

	clock.Advance(40 * time.Second)
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	if got := surface.promptCount(); got != 1 {
		t.Fatalf("exactly 50000ms is still within cooldown, got %d prompts", got)
	}

	clock.Advance(time.Millisecond)
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	if got := surface.promptCount(); got != 2 {
		t.Fatalf("expected second modal after cooldown, got %d", got)
	}
}

func TestPopupSuppressedRightAfterDismissal(t *testing.T) {
	surface := &fakeSurface{answer: ActionDone}
	state := newMemoryState()
	presenter, clock := newTestPresenter(surface, state)
	defer presenter.Close()

	now := clock.Now().UnixMilli()
	_ = state.SetInt64(model.StateLastPopupTimestamp, now)

	if err := presenter.Present(model.KindWindowGaze, model.ModeAnnoyingPopup, ""); err != nil {
		t.Fatalf("present: %v", err)
	}
	presenter.Wait()
	if surface.promptCount() != 0 {
		t.Fatalf("popup must be suppressed during cooldown")
	}
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != now {
		t.Fatalf("suppression must not touch the timestamp")
	}
}

func TestPopupClosedWithoutChoiceKeepsTimestamp(t *testing.T) {
	surface := &fakeSurface{answer: ""}
	state := newMemoryState()
	presenter, _ := newTestPresenter(surface, state)
	defer presenter.Close()

	_ = presenter.Present(model.KindWindowGaze, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != 0 {
		t.Fatalf("timestamp must only change on dismissal, got %d", value)
	}
	if reminder, _ := surface.current(); reminder != nil {
		t.Fatalf("no thank-you without dismissal")
	}
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	presenter.Wait()
	if got := surface.promptCount(); got != 2 {
		t.Fatalf("a closed popup must not block the next one, got %d prompts", got)
	}
}

func TestPopupNotStackedWhileOneIsOpen(t *testing.T) {
	surface := &fakeSurface{block: true}
	state := newMemoryState()
	presenter, clock := newTestPresenter(surface, state)

	_ = presenter.Present(model.KindWindowGaze, model.ModeAnnoyingPopup, "")
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	waitFor(t, "first popup", func() bool { return surface.promptCount() >= 1 })

	clock.Advance(time.Hour)
	_ = presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, "")
	settle()
	if got := surface.promptCount(); got != 1 {
		t.Fatalf("expected a single modal while one is open, got %d", got)
	}

	presenter.Close()
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != 0 {
		t.Fatalf("an unanswered popup must not record a timestamp, got %d", value)
	}
}

func TestNotificationAcknowledgesWithoutCooldown(t *testing.T) {
	surface := &fakeSurface{answer: ActionDone}
	state := newMemoryState()
	presenter, _ := newTestPresenter(surface, state)
	defer presenter.Close()

	for i := 0; i < 3; i++ {
		_ = presenter.Present(model.KindStretch, model.ModeNotification, "")
	}
	presenter.Wait()
	if got := surface.promptCount(); got != 3 {
		t.Fatalf("expected 3 notifications, got %d", got)
	}
	if surface.prompts[0].Modal {
		t.Fatalf("notification must not be modal")
	}
	if reminder, _ := surface.current(); reminder == nil || reminder.Text != ThankYouMessage {
		t.Fatalf("expected thank-you, got %+v", reminder)
	}
	if value, _ := state.Int64(model.StateLastPopupTimestamp); value != 0 {
		t.Fatalf("notification must not record popup timestamp")
	}
}

func TestNotificationAnsweredAfterModeChange(t *testing.T) {
	surface := &fakeSurface{answer: ActionDone}
	presenter, _ := newTestPresenter(surface, newMemoryState())
	defer presenter.Close()
	presenter.SetModeSource(func() model.ReminderMode { return model.ModeStatusBar })

	_ = presenter.Present(model.KindStretch, model.ModeNotification, "")
	presenter.Wait()
	if reminder, _ := surface.current(); reminder != nil {
		t.Fatalf("stale notification answer must not acknowledge")
	}
}

func TestStatusIndicatorHidesIndependently(t *testing.T) {
	surface := &fakeSurface{}
	presenter, clock := newTestPresenter(surface, newMemoryState())
	defer presenter.Close()

	_ = presenter.Present(model.KindWindowGaze, model.ModeStatusBar, "")
	presenter.ShowStatus(scheduler.StatusUpdated)
	_, status := surface.current()
	if status == nil || status.Text != "Mindful Coding settings updated" || status.Icon != IconGear {
		t.Fatalf("unexpected status %+v", status)
	}

	clock.Advance(DefaultHideAfter)
	waitFor(t, "status hide", func() bool {
		_, status := surface.current()
		return status == nil
	})
	if reminder, _ := surface.current(); reminder == nil {
		t.Fatalf("status hide must not touch the reminder indicator")
	}
}

func TestMissingSurfaceIsReported(t *testing.T) {
	presenter := New(clockwork.NewFakeClock(), nil, newMemoryState(), Options{})
	defer presenter.Close()

	if err := presenter.Present(model.KindStretch, model.ModeStatusBar, ""); err != ErrNoSurface {
		t.Fatalf("expected ErrNoSurface, got %v", err)
	}
	presenter.Acknowledge()
	presenter.ShowStatus(scheduler.StatusActive)
}

func TestPopupWithoutStateIsReported(t *testing.T) {
	presenter := New(clockwork.NewFakeClock(), &fakeSurface{}, nil, Options{})
	defer presenter.Close()

	if err := presenter.Present(model.KindStretch, model.ModeAnnoyingPopup, ""); err != ErrNoState {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
}

func TestCloseCancelsOutstandingPrompts(t *testing.T) {
	surface := &fakeSurface{block: true}
	presenter, _ := newTestPresenter(surface, newMemoryState())

	_ = presenter.Present(model.KindStretch, model.ModeNotification, "")
	waitFor(t, "prompt", func() bool { return surface.promptCount() == 1 })

	done := make(chan struct{})
	go func() {
		presenter.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not cancel the prompt")
	}
}
