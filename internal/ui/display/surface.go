package display

import (
	"mindful/internal/core/presenter"
	"mindful/internal/ui/overlay"
	"mindful/internal/ui/tray"
)

// Surface joins the tray indicators and the prompt windows into the
// presenter's display.
type Surface struct {
	*tray.Manager
	*overlay.Prompter
}

var _ presenter.Surface = (*Surface)(nil)

// New creates a Surface.
func New(manager *tray.Manager, prompter *overlay.Prompter) *Surface {
	return &Surface{Manager: manager, Prompter: prompter}
}
