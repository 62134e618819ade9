package tray

import (
	"mindful/internal/core/presenter"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnPreferences func()
	OnDismiss     func()
	OnQuit        func()
}

// Manager renders the reminder and status indicators as tray menu items.
// Both are single-slot: showing replaces the previous content.
type Manager struct {
	app       desktop.App
	callbacks Callbacks
	reminder  *presenter.Indicator
	status    *presenter.Indicator
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}
	manager.refresh()
	return manager
}

// ShowReminder sets the reminder indicator.
func (manager *Manager) ShowReminder(indicator presenter.Indicator) {
	fyne.Do(func() {
		manager.reminder = &indicator
		manager.refresh()
	})
}

// HideReminder clears the reminder indicator.
func (manager *Manager) HideReminder() {
	fyne.Do(func() {
		manager.reminder = nil
		manager.refresh()
	})
}

// ShowStatus sets the idle status indicator.
func (manager *Manager) ShowStatus(indicator presenter.Indicator) {
	fyne.Do(func() {
		manager.status = &indicator
		manager.refresh()
	})
}

// HideStatus clears the idle status indicator.
func (manager *Manager) HideStatus() {
	fyne.Do(func() {
		manager.status = nil
		manager.refresh()
	})
}

func (manager *Manager) refresh() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("Mindful Coding", manager.menuItems()...))
	if manager.reminder != nil && manager.reminder.Icon == presenter.IconClock {
		manager.app.SetSystemTrayIcon(theme.InfoIcon())
		return
	}
	manager.app.SetSystemTrayIcon(theme.VisibilityIcon())
}

func (manager *Manager) menuItems() []*fyne.MenuItem {
	var items []*fyne.MenuItem
	if manager.reminder != nil {
		items = append(items, fyne.NewMenuItem(IndicatorLabel(*manager.reminder), manager.dismiss))
	}
	if manager.status != nil {
		items = append(items, fyne.NewMenuItem(IndicatorLabel(*manager.status), manager.preferences))
	}
	if len(items) > 0 {
		items = append(items, fyne.NewMenuItemSeparator())
	}

	dismiss := fyne.NewMenuItem("Done - dismiss reminder", manager.dismiss)
	dismiss.Disabled = manager.reminder == nil

	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	quit.IsQuit = true

	return append(items,
		fyne.NewMenuItem("Mindful Coding settings...", manager.preferences),
		dismiss,
		quit,
	)
}

func (manager *Manager) dismiss() {
	if manager.callbacks.OnDismiss != nil {
		manager.callbacks.OnDismiss()
	}
}

func (manager *Manager) preferences() {
	if manager.callbacks.OnPreferences != nil {
		manager.callbacks.OnPreferences()
	}
}

// IndicatorLabel renders the glyph and text of an indicator.
func IndicatorLabel(indicator presenter.Indicator) string {
	label := indicator.Text
	switch indicator.Icon {
	case presenter.IconClock:
		label = "🕒 " + label
	case presenter.IconCheck:
		label = "✔ " + label
	case presenter.IconGear:
		label = "⚙ " + label
	}
	if indicator.Tooltip != "" {
		label += " (" + indicator.Tooltip + ")"
	}
	return label
}
