package preferences

import (
	"strconv"
	"strings"

	"mindful/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window     fyne.Window
	settings   model.Settings
	onSave     func(model.Settings)
	mode       *widget.Select
	gazeCheck  *widget.Check
	gazeInt    *widget.Entry
	stretchChk *widget.Check
	stretchInt *widget.Entry
	idleCheck  *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings model.Settings, onSave func(model.Settings)) *Window {
	window := app.NewWindow("Mindful Coding Settings")

	options := make([]string, 0, len(model.Modes))
	for _, mode := range model.Modes {
		options = append(options, string(mode))
	}

	prefs := &Window{
		window:     window,
		onSave:     onSave,
		mode:       widget.NewSelect(options, nil),
		gazeCheck:  widget.NewCheck("Remind me to gaze out of a window", nil),
		gazeInt:    widget.NewEntry(),
		stretchChk: widget.NewCheck("Remind me to stretch", nil),
		stretchInt: widget.NewEntry(),
		idleCheck:  widget.NewCheck("Skip reminders when I have been away", nil),
	}
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Reminder type", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.mode,
		widget.NewLabelWithStyle("Reminders", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.gazeCheck,
		container.NewHBox(widget.NewLabel("every"), prefs.gazeInt, widget.NewLabel("min")),
		prefs.stretchChk,
		container.NewHBox(widget.NewLabel("every"), prefs.stretchInt, widget.NewLabel("min")),
		prefs.idleCheck,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.SetCloseIntercept(window.Hide)
	window.Resize(fyne.NewSize(420, 360))

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings model.Settings) {
	prefs.settings = settings
	prefs.mode.SetSelected(string(settings.Mode))
	prefs.gazeCheck.SetChecked(settings.WindowGaze.Enabled)
	prefs.gazeInt.SetText(formatMinutes(settings.WindowGaze.IntervalMinutes))
	prefs.stretchChk.SetChecked(settings.Stretch.Enabled)
	prefs.stretchInt.SetText(formatMinutes(settings.Stretch.IntervalMinutes))
	prefs.idleCheck.SetChecked(settings.SkipWhenIdle)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if mode, ok := model.ParseMode(prefs.mode.Selected); ok {
		settings.Mode = mode
	}
	settings.WindowGaze.Enabled = prefs.gazeCheck.Checked
	if minutes, ok := parsePositiveMinutes(prefs.gazeInt.Text); ok {
		settings.WindowGaze.IntervalMinutes = minutes
	}
	settings.Stretch.Enabled = prefs.stretchChk.Checked
	if minutes, ok := parsePositiveMinutes(prefs.stretchInt.Text); ok {
		settings.Stretch.IntervalMinutes = minutes
	}
	settings.SkipWhenIdle = prefs.idleCheck.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveMinutes(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func formatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', -1, 64)
}
