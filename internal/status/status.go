// Package status provides a thread-safe status tracker for the pin-button daemon.
// It is read by the HTTP handlers and by lifecycle events published to MQTT.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pin-button/internal/button"
	"github.com/sweeney/pin-button/internal/pinbutton"
)

// Config contains daemon configuration for display.
type Config struct {
	Backend     string
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	SerialPort  string
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Pressed     int
	Released    int
	Click       int
	DoubleClick int
	LongClick   int
}

// Add counts one event.
func (c *EventCounts) Add(t button.EventType) {
	switch t {
	case button.EventPressed:
		c.Pressed++
	case button.EventReleased:
		c.Released++
	case button.EventClick:
		c.Click++
	case button.EventDoubleClick:
		c.DoubleClick++
	case button.EventLongClick:
		c.LongClick++
	}
}

// ButtonInfo identifies a tracked button.
type ButtonInfo struct {
	Name string
	Pin  int
}

// ButtonStatus is the state of one button.
type ButtonStatus struct {
	ButtonInfo
	Down        bool
	Phase       button.Phase
	LastEvent   button.EventType // zero until the first event
	LastEventAt time.Time
	Counts      EventCounts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Buttons       []ButtonStatus
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Totals sums event counts over all buttons.
func (s Snapshot) Totals() EventCounts {
	var t EventCounts
	for _, b := range s.Buttons {
		t.Pressed += b.Counts.Pressed
		t.Released += b.Counts.Released
		t.Click += b.Counts.Click
		t.DoubleClick += b.Counts.DoubleClick
		t.LongClick += b.Counts.LongClick
	}
	return t
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	byName map[string]int
}

// NewTracker creates a Tracker for the given buttons, in display order.
func NewTracker(startTime time.Time, cfg Config, buttons []ButtonInfo) *Tracker {
	t := &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Buttons:   make([]ButtonStatus, len(buttons)),
		},
		byName: make(map[string]int, len(buttons)),
	}
	for i, b := range buttons {
		t.snap.Buttons[i] = ButtonStatus{ButtonInfo: b, Phase: button.PhaseIdle}
		t.byName[b.Name] = i
	}
	return t
}

// UpdateButton sets the current level and phase of a button.
// Called from runLoop on every tick. Unknown names are ignored.
func (t *Tracker) UpdateButton(name string, down bool, phase button.Phase) {
	t.mu.Lock()
	if i, ok := t.byName[name]; ok {
		t.snap.Buttons[i].Down = down
		t.snap.Buttons[i].Phase = phase
	}
	t.mu.Unlock()
}

// Record counts an event and remembers it as the button's last event.
func (t *Tracker) Record(event pinbutton.Event) {
	t.mu.Lock()
	if i, ok := t.byName[event.Button]; ok {
		b := &t.snap.Buttons[i]
		b.Counts.Add(event.Type)
		b.LastEvent = event.Type
		b.LastEventAt = event.Timestamp
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Buttons = append([]ButtonStatus(nil), t.snap.Buttons...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
