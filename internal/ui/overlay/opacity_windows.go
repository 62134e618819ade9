//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
)

const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	lwaAlpha          = 0x2
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32DLL.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32DLL.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
)

// applyNativeOpacity makes the whole modal window translucent; the canvas
// background alone is not enough on Windows.
func applyNativeOpacity(window fyne.Window, alpha uint8) {
	nativeWindow, ok := window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		var hwnd uintptr
		switch value := context.(type) {
		case driver.WindowsWindowContext:
			hwnd = value.HWND
		case *driver.WindowsWindowContext:
			hwnd = value.HWND
		}
		if hwnd == 0 {
			return
		}

		index := gwlExStyle
		exStyle := uintptr(uint32(index))
		style, _, _ := procGetWindowLongPtrW.Call(hwnd, exStyle)
		if style&wsExLayered == 0 {
			procSetWindowLongPtrW.Call(hwnd, exStyle, style|wsExLayered)
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), uintptr(lwaAlpha))
	})
}
