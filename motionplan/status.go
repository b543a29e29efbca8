package motionplan

import (
	"strings"

	"github.com/pkg/errors"
)

// Status is the mode the planner reported for a tick.
type Status int

// The possible planner statuses.
const (
	StatusNormal Status = iota
	StatusStagnant
	StatusOscillating
	StatusEscaping
	StatusArrived
)

var statusNames = map[Status]string{
	StatusNormal:      "normal",
	StatusStagnant:    "stagnant",
	StatusOscillating: "oscillating",
	StatusEscaping:    "escaping",
	StatusArrived:     "arrived",
}

// AllStatuses lists every status in declaration order.
var AllStatuses = []Status{StatusNormal, StatusStagnant, StatusOscillating, StatusEscaping, StatusArrived}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, errors.Errorf("cannot marshal unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	want := strings.ToLower(string(text))
	for status, name := range statusNames {
		if name == want {
			*s = status
			return nil
		}
	}
	return errors.Errorf("unknown status %q", string(text))
}

// Resolution describes how the integrator settled a proposed move.
type Resolution string

// The rungs of the integrator's fallback ladder, plus ResolutionNone for ticks that do not move.
const (
	ResolutionNone       = Resolution("none")
	ResolutionFull       = Resolution("full")
	ResolutionHalved     = Resolution("halved")
	ResolutionRedirected = Resolution("redirected")
	ResolutionBlocked    = Resolution("blocked")
)
