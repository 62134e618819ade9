package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock, a localhost listener on a
// port derived from the app name.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance binds the app port. When another instance holds it,
// that instance is poked (see Serve) and ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if conn, dialErr := net.DialTimeout("tcp", address, time.Second); dialErr == nil {
			_ = conn.Close()
		}
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Serve calls onActivate for every later launch until the guard is released.
func (guard *InstanceGuard) Serve(onActivate func()) {
	if guard == nil || guard.listener == nil {
		return
	}
	go func() {
		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
			if onActivate != nil {
				onActivate()
			}
		}
	}()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
