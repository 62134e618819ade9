package main

import (
	"context"
	"errors"
	"log"

	"mindful/internal/core/model"
	"mindful/internal/core/presenter"
	"mindful/internal/core/reconciler"
	"mindful/internal/core/scheduler"
	"mindful/internal/platform"
	"mindful/internal/storage"
	"mindful/internal/ui/display"
	"mindful/internal/ui/overlay"
	"mindful/internal/ui/preferences"
	"mindful/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
)

const appName = "Mindful"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			log.Printf("%s is already running", appName)
			return
		}
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settingsPath, err := storage.SettingsPath(appName)
	if err != nil {
		log.Printf("settings: %v", err)
		return
	}
	settingsStore, err := storage.OpenSettings(settingsPath)
	if err != nil {
		// The store keeps working with every key unset.
		log.Printf("load settings: %v", err)
	}

	statePath, err := storage.StatePath(appName)
	if err != nil {
		log.Printf("state: %v", err)
		return
	}
	stateStore, err := storage.OpenState(statePath)
	if err != nil {
		log.Printf("open state: %v", err)
		return
	}
	defer func() {
		_ = stateStore.Close()
	}()

	fyneApp := app.NewWithID("com.mindful.app")
	fyneApp.SetIcon(theme.VisibilityIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		rec         *reconciler.Reconciler
		prefsWindow *preferences.Window
	)
	openPreferences := func() {
		rec.OpenSettings()
		prefsWindow.UpdateSettings(rec.Settings())
		prefsWindow.Show()
	}

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnPreferences: openPreferences,
		OnDismiss: func() {
			rec.DismissReminder()
		},
		OnQuit: func() {
			cancel()
			rec.Shutdown()
			fyneApp.Quit()
		},
	})
	prompter := overlay.New(fyneApp, overlay.Config{
		Opacity:    overlay.OpacityToAlpha(0.85),
		Fullscreen: true,
	})
	surface := display.New(trayManager, prompter)

	pres := presenter.New(nil, surface, stateStore, presenter.Options{})
	sched := scheduler.New(nil, pres)
	rec = reconciler.New(settingsStore, stateStore, surface, sched, pres)
	rec.SetIdleChecker(platform.NewIdleProvider())

	prefsWindow = preferences.New(fyneApp, rec.Settings(), func(updated model.Settings) {
		if err := rec.ApplySettings(updated); err != nil {
			log.Printf("save settings: %v", err)
		}
	})

	changes, err := settingsStore.Watch(ctx)
	if err != nil {
		log.Printf("watch settings: %v", err)
	}
	go rec.Run(ctx, changes)
	go func() {
		if err := rec.Activate(ctx); err != nil {
			log.Printf("activate: %v", err)
		}
	}()

	guard.Serve(func() {
		fyne.Do(openPreferences)
	})

	fyneApp.Run()
	cancel()
	rec.Shutdown()
}
