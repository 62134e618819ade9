package reconciler

import (
	"context"
	"fmt"
	"log"

	"mindful/internal/core/model"
	"mindful/internal/core/presenter"
)

const (
	ActionKeep  = "Keep"
	ActionReset = "Reset"

	keepOrResetMessage = "You have existing settings for Mindful Coding. Would you like to keep them or reset to defaults?"
	chooseModeMessage  = "How would you like Mindful Coding to remind you to take a break?"
)

// Activate runs the first-run flow once, then starts the scheduler. The
// prompted flag is stored after the flow completes whatever the user chose.
func (reconciler *Reconciler) Activate(ctx context.Context) error {
	prompted, err := reconciler.state.Bool(model.StatePromptedForSettings)
	if err != nil {
		log.Printf("read first-run flag: %v", err)
		prompted = true
	}
	if prompted {
		reconciler.setup(false)
		return nil
	}

	reconciler.firstRun(ctx)
	reconciler.setup(false)

	if err := reconciler.state.SetBool(model.StatePromptedForSettings, true); err != nil {
		return fmt.Errorf("store first-run flag: %w", err)
	}
	return nil
}

func (reconciler *Reconciler) firstRun(ctx context.Context) {
	configured, err := reconciler.config.ModeConfigured()
	if err != nil {
		log.Printf("read reminder mode: %v", err)
		return
	}
	if !configured {
		return
	}

	choice, ok := reconciler.ask(ctx, presenter.Prompt{
		Message: keepOrResetMessage,
		Actions: []string{ActionKeep, ActionReset},
	})
	if !ok || choice != ActionReset {
		return
	}

	if _, err := reconciler.config.Reset(); err != nil {
		log.Printf("reset settings: %v", err)
		return
	}

	actions := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		actions = append(actions, string(mode))
	}
	choice, ok = reconciler.ask(ctx, presenter.Prompt{Message: chooseModeMessage, Actions: actions})
	if !ok {
		return
	}
	mode, known := model.ParseMode(choice)
	if !known {
		mode = model.ModeNone
	}
	if _, err := reconciler.config.SetMode(mode); err != nil {
		log.Printf("store reminder mode: %v", err)
	}
}

// ask reports ok=false when the prompt failed or a configuration change
// arrived while it was open.
func (reconciler *Reconciler) ask(ctx context.Context, prompt presenter.Prompt) (string, bool) {
	if reconciler.surface == nil {
		log.Printf("first-run prompt: %v", presenter.ErrNoSurface)
		return "", false
	}

	reconciler.mu.Lock()
	generation := reconciler.generation
	reconciler.mu.Unlock()

	choice, err := reconciler.surface.Prompt(ctx, prompt)
	if err != nil {
		log.Printf("first-run prompt: %v", err)
		return "", false
	}

	reconciler.mu.Lock()
	superseded := generation != reconciler.generation
	reconciler.mu.Unlock()
	if superseded {
		log.Printf("first-run prompt superseded by a configuration change; ignoring %q", choice)
		return "", false
	}
	return choice, true
}
