package command

import "time"

const (
	// MinInterval is the shortest schedule a command may run on.
	MinInterval = 100 * time.Millisecond

	fineStep   = 100 * time.Millisecond
	coarseStep = time.Second
)

// IncreaseInterval steps d up: by 100ms below one second, by a whole
// second from there on.
func IncreaseInterval(d time.Duration) time.Duration {
	if d < time.Second {
		return ClampInterval(d + fineStep)
	}
	return ClampInterval(d + coarseStep)
}

// DecreaseInterval steps d down, mirroring IncreaseInterval, and never
// goes below MinInterval.
func DecreaseInterval(d time.Duration) time.Duration {
	if d <= time.Second {
		return ClampInterval(d - fineStep)
	}
	return ClampInterval(d - coarseStep)
}

// ClampInterval raises d to MinInterval if needed.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}
