//go:build !windows

package overlay

import "fyne.io/fyne/v2"

func applyNativeOpacity(fyne.Window, uint8) {}
