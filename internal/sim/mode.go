package sim

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned by ParseMode for unrecognized names.
var ErrUnknownMode = errors.New("sim: unknown mode")

// Mode selects which agent operation drives a tick.
type Mode string

const (
	// ModeStep translates freely with Step and turns only at rest or on
	// reversal.
	ModeStep Mode = "step"
	// ModeCenter drives MoveToCenterStep; turns align to the lane first.
	ModeCenter Mode = "center"
	// ModeBudget spends the tick budget in segments with TryStep and turns
	// exactly on cell centers, carrying the leftover into the new heading.
	ModeBudget Mode = "budget"
)

var modes = []Mode{ModeStep, ModeCenter, ModeBudget}

// Modes returns all modes in cycle order.
func Modes() []Mode {
	return append([]Mode(nil), modes...)
}

// ParseMode parses a mode name. The empty string yields ModeCenter.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeCenter, nil
	}
	for _, m := range modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Next returns the following mode in cycle order.
func (m Mode) Next() Mode {
	for i, candidate := range modes {
		if candidate == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return ModeCenter
}
