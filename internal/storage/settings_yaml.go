package storage

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"mindful/internal/core/model"
	"mindful/internal/platform"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

// yamlSettings mirrors the file. Nil fields are unset and fall back to
// defaults.
type yamlSettings struct {
	ReminderType             *string  `yaml:"reminderType,omitempty"`
	EnableWindowGazeReminder *bool    `yaml:"enableWindowGazeReminder,omitempty"`
	EnableStretchReminder    *bool    `yaml:"enableStretchReminder,omitempty"`
	WindowGazeInterval       *float64 `yaml:"windowGazeInterval,omitempty"`
	StretchInterval          *float64 `yaml:"stretchInterval,omitempty"`
	SkipWhenIdle             *bool    `yaml:"skipWhenIdle,omitempty"`
}

// SettingsStore is the YAML-backed configuration provider.
type SettingsStore struct {
	mu       sync.Mutex
	path     string
	snapshot yamlSettings
}

// SettingsPath returns the settings file location for appName.
func SettingsPath(appName string) (string, error) {
	configDir, err := platform.NewService().GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve settings path: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// OpenSettings loads the settings file at path. A missing file means every
// key is unset.
func OpenSettings(path string) (*SettingsStore, error) {
	store := &SettingsStore{path: filepath.Clean(path)}
	fileData, err := store.read()
	if err != nil {
		return store, err
	}
	store.snapshot = fileData
	return store, nil
}

// Path returns the settings file path.
func (store *SettingsStore) Path() string {
	return store.path
}

// Settings returns the effective settings with defaults applied.
func (store *SettingsStore) Settings() (model.Settings, error) {
	store.mu.Lock()
	fileData := store.snapshot
	store.mu.Unlock()
	return applyYamlSettings(fileData), nil
}

// ModeConfigured reports whether reminderType is present in the file.
func (store *SettingsStore) ModeConfigured() (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.snapshot.ReminderType != nil, nil
}

// Save writes every setting and returns the recognized keys that changed.
func (store *SettingsStore) Save(settings model.Settings) ([]string, error) {
	mode := string(settings.Mode)
	gazeEnabled := settings.WindowGaze.Enabled
	stretchEnabled := settings.Stretch.Enabled
	gazeInterval := settings.WindowGaze.IntervalMinutes
	stretchInterval := settings.Stretch.IntervalMinutes
	skipWhenIdle := settings.SkipWhenIdle

	return store.update(func(fileData *yamlSettings) {
		fileData.ReminderType = &mode
		fileData.EnableWindowGazeReminder = &gazeEnabled
		fileData.EnableStretchReminder = &stretchEnabled
		fileData.WindowGazeInterval = &gazeInterval
		fileData.StretchInterval = &stretchInterval
		fileData.SkipWhenIdle = &skipWhenIdle
	})
}

// SetMode writes reminderType only.
func (store *SettingsStore) SetMode(mode model.ReminderMode) ([]string, error) {
	value := string(mode)
	return store.update(func(fileData *yamlSettings) {
		fileData.ReminderType = &value
	})
}

// Reset unsets the five recognized keys.
func (store *SettingsStore) Reset() ([]string, error) {
	return store.update(func(fileData *yamlSettings) {
		fileData.ReminderType = nil
		fileData.EnableWindowGazeReminder = nil
		fileData.EnableStretchReminder = nil
		fileData.WindowGazeInterval = nil
		fileData.StretchInterval = nil
	})
}

// Reload re-reads the file and returns the recognized keys that changed
// since the last read or write.
func (store *SettingsStore) Reload() ([]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	fileData, err := store.read()
	if err != nil {
		return nil, err
	}
	changed := changedKeys(store.snapshot, fileData)
	store.snapshot = fileData
	return changed, nil
}

func (store *SettingsStore) update(mutate func(*yamlSettings)) ([]string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	next := store.snapshot
	mutate(&next)
	if err := store.write(next); err != nil {
		return nil, err
	}
	changed := changedKeys(store.snapshot, next)
	store.snapshot = next
	return changed, nil
}

func (store *SettingsStore) read() (yamlSettings, error) {
	var fileData yamlSettings
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileData, nil
		}
		return fileData, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return yamlSettings{}, fmt.Errorf("parse settings yaml: %w", err)
	}
	return fileData, nil
}

// write replaces the file through a rename so watchers never see a partial
// document.
func (store *SettingsStore) write(fileData yamlSettings) error {
	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(serialized); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmpPath, store.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func applyYamlSettings(fileData yamlSettings) model.Settings {
	settings := model.DefaultSettings()
	if fileData.ReminderType != nil {
		mode, ok := model.ParseMode(*fileData.ReminderType)
		if !ok {
			log.Printf("unknown reminderType %q, using %s", *fileData.ReminderType, model.ModeNone)
		}
		settings.Mode = mode
	}
	if fileData.EnableWindowGazeReminder != nil {
		settings.WindowGaze.Enabled = *fileData.EnableWindowGazeReminder
	}
	if fileData.EnableStretchReminder != nil {
		settings.Stretch.Enabled = *fileData.EnableStretchReminder
	}
	if fileData.WindowGazeInterval != nil {
		settings.WindowGaze.IntervalMinutes = *fileData.WindowGazeInterval
	}
	if fileData.StretchInterval != nil {
		settings.Stretch.IntervalMinutes = *fileData.StretchInterval
	}
	if fileData.SkipWhenIdle != nil {
		settings.SkipWhenIdle = *fileData.SkipWhenIdle
	}
	return settings
}

func changedKeys(before, after yamlSettings) []string {
	var changed []string
	if !equalPtr(before.ReminderType, after.ReminderType) {
		changed = append(changed, model.KeyReminderType)
	}
	if !equalPtr(before.WindowGazeInterval, after.WindowGazeInterval) {
		changed = append(changed, model.KeyWindowGazeInterval)
	}
	if !equalPtr(before.StretchInterval, after.StretchInterval) {
		changed = append(changed, model.KeyStretchInterval)
	}
	if !equalPtr(before.EnableWindowGazeReminder, after.EnableWindowGazeReminder) {
		changed = append(changed, model.KeyEnableWindowGazeReminder)
	}
	if !equalPtr(before.EnableStretchReminder, after.EnableStretchReminder) {
		changed = append(changed, model.KeyEnableStretchReminder)
	}
	if !equalPtr(before.SkipWhenIdle, after.SkipWhenIdle) {
		changed = append(changed, model.KeySkipWhenIdle)
	}
	return changed
}

func equalPtr[T comparable](left, right *T) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return *left == *right
}
