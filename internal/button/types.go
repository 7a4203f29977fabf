// Package button classifies a sampled, active-high "is pressed" signal into
// click, double-click, long-click and release events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package button

import (
	"errors"
	"strings"
	"time"
)

// Default timing windows.
const (
	DefaultSingleClickDelay = 250 * time.Millisecond
	DefaultLongClickDelay   = 300 * time.Millisecond
)

// Config holds the timing windows of a classifier. It is copied at
// construction and never changes afterwards.
type Config struct {
	// SingleClickDelay is the window after a release in which a second press
	// makes a double-click. A gap equal to the delay is not a double-click.
	SingleClickDelay time.Duration
	// LongClickDelay is how long a press must be held to count as a long click.
	// A press held exactly this long is a long click.
	LongClickDelay time.Duration
	// DebounceDelay locks out level changes for this long after an accepted
	// edge. Zero accepts every change.
	DebounceDelay time.Duration
}

// DefaultConfig returns the 250ms / 300ms timing with debouncing disabled.
func DefaultConfig() Config {
	return Config{
		SingleClickDelay: DefaultSingleClickDelay,
		LongClickDelay:   DefaultLongClickDelay,
	}
}

// Validate rejects negative durations.
func (c Config) Validate() error {
	if c.SingleClickDelay < 0 {
		return errors.New("button: single click delay must not be negative")
	}
	if c.LongClickDelay < 0 {
		return errors.New("button: long click delay must not be negative")
	}
	if c.DebounceDelay < 0 {
		return errors.New("button: debounce delay must not be negative")
	}
	return nil
}

// Phase is the classification phase of a button.
type Phase string

const (
	PhaseIdle            Phase = "IDLE"
	PhasePressed         Phase = "PRESSED"
	PhaseWaitSecondClick Phase = "WAIT_SECOND_CLICK"
	PhaseSecondPressed   Phase = "SECOND_PRESSED"
	PhaseLongPressed     Phase = "LONG_PRESSED"
)

// EventType is a single event produced by an update.
type EventType uint8

const (
	EventPressed EventType = 1 << iota
	EventReleased
	EventClick
	EventDoubleClick
	EventLongClick
)

// reportOrder lists event types in the order they happened within one update.
// A click closes the previous sequence before a new press opens the next one.
var reportOrder = []EventType{
	EventClick,
	EventPressed,
	EventLongClick,
	EventDoubleClick,
	EventReleased,
}

func (e EventType) String() string {
	switch e {
	case EventPressed:
		return "PRESSED"
	case EventReleased:
		return "RELEASED"
	case EventClick:
		return "CLICK"
	case EventDoubleClick:
		return "DOUBLE_CLICK"
	case EventLongClick:
		return "LONG_CLICK"
	}
	return "UNKNOWN"
}

// Events is the set of events produced by the most recent update.
type Events uint8

// Has reports whether e contains t.
func (e Events) Has(t EventType) bool {
	return e&Events(t) != 0
}

// List returns the contained event types in the order they happened.
func (e Events) List() []EventType {
	var out []EventType
	for _, t := range reportOrder {
		if e.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (e Events) String() string {
	if e == 0 {
		return "NONE"
	}
	var names []string
	for _, t := range e.List() {
		names = append(names, t.String())
	}
	return strings.Join(names, "|")
}
