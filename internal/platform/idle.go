package platform

import (
	"time"

	"mindful/internal/core/reconciler"
)

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider. Unsupported
// systems return reconciler.ErrIdleUnsupported from IdleDuration.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, reconciler.ErrIdleUnsupported
}
