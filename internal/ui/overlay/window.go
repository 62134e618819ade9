package overlay

import (
	"context"
	"image/color"

	"mindful/internal/core/presenter"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "Mindful Coding"

// Config defines overlay visuals for modal prompts.
type Config struct {
	Opacity    uint8
	Fullscreen bool
}

// Prompter shows prompts in their own windows. Modal prompts cover the
// screen; other prompts use a small notice window plus an OS notification.
type Prompter struct {
	app    fyne.App
	config Config
	// runOnMain queues work on the UI loop without waiting for it.
	runOnMain func(func())
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a prompter.
func New(app fyne.App, config Config) *Prompter {
	return &Prompter{app: app, config: config, runOnMain: fyne.Do}
}

// Prompt blocks until an action is tapped, the window is closed (empty
// choice) or ctx is done. It never waits on the UI loop, so it returns on
// cancellation even after the app loop has stopped.
func (prompter *Prompter) Prompt(ctx context.Context, prompt presenter.Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	answers := make(chan string, 1)
	answer := func(choice string) {
		select {
		case answers <- choice:
		default:
		}
	}

	prompter.runOnMain(func() {
		if ctx.Err() != nil {
			return
		}
		var window fyne.Window
		if prompt.Modal {
			window = prompter.newModalWindow(prompt, answer)
		} else {
			window = prompter.newNoticeWindow(prompt, answer)
		}
		stopClose := context.AfterFunc(ctx, func() {
			fyne.Do(window.Close)
		})
		window.SetOnClosed(func() {
			stopClose()
			answer("")
		})
		window.Show()
		window.RequestFocus()
		if !prompt.Modal {
			prompter.app.SendNotification(fyne.NewNotification(appTitle, prompt.Message))
		}
	})

	select {
	case choice := <-answers:
		return choice, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (prompter *Prompter) newModalWindow(prompt presenter.Prompt, answer func(string)) fyne.Window {
	window := prompter.app.NewWindow(appTitle)
	if driver, ok := prompter.app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if prompter.app.Icon() != nil {
		window.SetIcon(prompter.app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: prompter.config.Opacity})

	title := canvas.NewText(appTitle, color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	title.Alignment = fyne.TextAlignCenter
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 21

	message := canvas.NewText(prompt.Message, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	message.Alignment = fyne.TextAlignCenter
	message.TextSize = 28

	content := container.NewVBox(title, message, actionButtons(window, prompt.Actions, answer))
	window.SetContent(container.NewStack(background, container.NewCenter(content)))

	if prompter.config.Fullscreen {
		window.SetFullScreen(true)
	} else {
		window.Resize(fyne.NewSize(640, 360))
		window.CenterOnScreen()
	}
	applyNativeOpacity(window, prompter.config.Opacity)
	return window
}

func (prompter *Prompter) newNoticeWindow(prompt presenter.Prompt, answer func(string)) fyne.Window {
	window := prompter.app.NewWindow(appTitle)
	message := widget.NewLabel(prompt.Message)
	message.Wrapping = fyne.TextWrapWord
	window.SetContent(container.NewBorder(nil, actionButtons(window, prompt.Actions, answer), nil, nil, message))
	window.Resize(fyne.NewSize(380, 140))
	window.CenterOnScreen()
	return window
}

func actionButtons(window fyne.Window, actions []string, answer func(string)) *fyne.Container {
	objects := []fyne.CanvasObject{layout.NewSpacer()}
	for _, action := range actions {
		choice := action
		button := widget.NewButton(choice, func() {
			answer(choice)
			window.Close()
		})
		if len(objects) == 1 {
			button.Importance = widget.HighImportance
		}
		objects = append(objects, button)
	}
	objects = append(objects, layout.NewSpacer())
	return container.NewHBox(objects...)
}

// OpacityToAlpha converts a 0..1 opacity to an alpha channel value.
func OpacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity * 255)
}
