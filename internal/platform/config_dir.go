package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
}

type platformService struct {
	userConfigDir func() (string, error)
	userHomeDir   func() (string, error)
}

// NewService returns the OS implementation.
func NewService() Service {
	return &platformService{
		userConfigDir: os.UserConfigDir,
		userHomeDir:   os.UserHomeDir,
	}
}

// GetConfigDir returns the OS-standard configuration directory, falling back
// to a directory under the home directory.
func (service *platformService) GetConfigDir() (string, error) {
	configDir, err := service.userConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := service.userHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(runtime.GOOS, homeDir), nil
}

func fallbackConfigDir(goos, homeDir string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support")
	case "windows":
		return filepath.Join(homeDir, "AppData", "Roaming")
	default:
		return filepath.Join(homeDir, ".config")
	}
}
