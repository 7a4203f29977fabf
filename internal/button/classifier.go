package button

import "time"

// Classifier turns a stream of pressed/released samples into click events.
// It is not safe for concurrent use; callers that sample from several
// goroutines must serialize Update and the query methods.
type Classifier struct {
	cfg Config

	// Debounced level and the time its edge was first sampled
	rawPressed bool
	edgeAt     time.Time

	// Opposite level waiting to settle
	pending      bool
	pendingSince time.Time

	phase       Phase
	pressStart  time.Time
	releaseTime time.Time

	// Events produced by the most recent Update
	events Events
}

// New creates a classifier in the idle phase.
func New(cfg Config) *Classifier {
	return &Classifier{
		cfg:   cfg,
		phase: PhaseIdle,
	}
}

// Update feeds one sample. pressed is the logical switch state (true = pressed)
// and now the sample time. Events from the previous call are discarded.
func (c *Classifier) Update(pressed bool, now time.Time) {
	c.events = 0
	down, edge := c.debounce(pressed, now)
	settled := c.settledAt(now)

	switch c.phase {
	case PhaseIdle:
		if down {
			c.startPress(PhasePressed, edge)
		}

	case PhasePressed:
		switch {
		case down:
			if elapsed(c.pressStart, settled) >= c.cfg.LongClickDelay {
				c.emit(EventLongClick)
				c.phase = PhaseLongPressed
			}
		case elapsed(c.pressStart, edge) >= c.cfg.LongClickDelay:
			// Threshold crossed between two samples: still a long click.
			c.emit(EventLongClick)
			c.emit(EventReleased)
			c.phase = PhaseIdle
		default:
			c.releaseTime = edge
			c.emit(EventReleased)
			c.phase = PhaseWaitSecondClick
		}

	case PhaseLongPressed:
		if !down {
			c.emit(EventReleased)
			c.phase = PhaseIdle
		}

	case PhaseWaitSecondClick:
		switch {
		case down && elapsed(c.releaseTime, edge) < c.cfg.SingleClickDelay:
			c.startPress(PhaseSecondPressed, edge)
		case down:
			c.emit(EventClick)
			c.startPress(PhasePressed, edge)
		case elapsed(c.releaseTime, settled) >= c.cfg.SingleClickDelay:
			c.emit(EventClick)
			c.phase = PhaseIdle
		}

	case PhaseSecondPressed:
		if !down {
			c.emit(EventDoubleClick)
			c.emit(EventReleased)
			c.phase = PhaseIdle
		}
	}
}

// debounce returns the filtered level and the time its edge was first
// sampled. A change becomes the filtered level once it has held for
// DebounceDelay; a change that reverts before then is dropped.
func (c *Classifier) debounce(pressed bool, now time.Time) (bool, time.Time) {
	if pressed == c.rawPressed {
		c.pending = false
		return c.rawPressed, c.edgeAt
	}
	if !c.pending {
		c.pending = true
		c.pendingSince = now
	}
	if elapsed(c.pendingSince, now) >= c.cfg.DebounceDelay {
		c.rawPressed = pressed
		c.edgeAt = c.pendingSince
		c.pending = false
	}
	return c.rawPressed, c.edgeAt
}

// settledAt is the last instant the filtered level is known to have held:
// now, or the start of a change still waiting to settle.
func (c *Classifier) settledAt(now time.Time) time.Time {
	if c.pending {
		return c.pendingSince
	}
	return now
}

func (c *Classifier) startPress(phase Phase, now time.Time) {
	c.pressStart = now
	c.phase = phase
	c.emit(EventPressed)
}

func (c *Classifier) emit(t EventType) {
	c.events |= Events(t)
}

// elapsed returns now - since, clamped to zero for clocks that go backwards.
func elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return d
}

// Events returns the events of the most recent Update.
func (c *Classifier) Events() Events {
	return c.events
}

// IsPressed reports whether the most recent Update started a press.
func (c *Classifier) IsPressed() bool {
	return c.events.Has(EventPressed)
}

// IsReleased reports whether the most recent Update ended a press.
func (c *Classifier) IsReleased() bool {
	return c.events.Has(EventReleased)
}

// IsClick reports whether the most recent Update completed a single click,
// i.e. the double-click window closed without a second press.
func (c *Classifier) IsClick() bool {
	return c.events.Has(EventClick)
}

// IsSingleClick is IsClick. A click is only reported once the double-click
// window has closed, so it is already a single click; the immediate signal
// for a short press is IsReleased.
func (c *Classifier) IsSingleClick() bool {
	return c.IsClick()
}

// IsDoubleClick reports whether the most recent Update released the second
// press of a pair.
func (c *Classifier) IsDoubleClick() bool {
	return c.events.Has(EventDoubleClick)
}

// IsLongClick reports whether the most recent Update crossed the long click
// threshold.
func (c *Classifier) IsLongClick() bool {
	return c.events.Has(EventLongClick)
}

// Down returns the current debounced level.
func (c *Classifier) Down() bool {
	return c.rawPressed
}

// Phase returns the current classification phase.
func (c *Classifier) Phase() Phase {
	return c.phase
}

// Config returns the timing windows the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}
