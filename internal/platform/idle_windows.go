package platform

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"
)

type lastInputProvider struct{}

var (
	procGetLastInputInfo = syscall.NewLazyDLL("user32.dll").NewProc("GetLastInputInfo")
	procGetTickCount64   = syscall.NewLazyDLL("kernel32.dll").NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

func newIdleProvider() IdleProvider {
	return lastInputProvider{}
}

func (lastInputProvider) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}

	result, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, fmt.Errorf("get last input info: %w", err)
	}

	tickResult, _, tickErr := procGetTickCount64.Call()
	if tickResult == 0 && tickErr != nil {
		return 0, fmt.Errorf("get tick count: %w", tickErr)
	}

	// dwTime is a 32-bit tick count; unsigned subtraction handles wraparound.
	idleMillis := uint32(tickResult) - info.dwTime
	return time.Duration(idleMillis) * time.Millisecond, nil
}
