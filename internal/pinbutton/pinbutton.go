// Package pinbutton reads a switch wired between a GPIO pin and ground and
// classifies it with a button.Classifier.
package pinbutton

import (
	"fmt"
	"time"

	"github.com/sweeney/pin-button/internal/button"
	"github.com/sweeney/pin-button/internal/gpio"
)

// PinButton is a button on an active-low, pulled-up input pin.
// Call Update regularly, then query the result with IsClick and friends.
type PinButton struct {
	pin        int
	driver     gpio.Driver
	now        func() time.Time
	classifier *button.Classifier
	sampledAt  time.Time
}

// Event is one classified event of a named button.
type Event struct {
	Timestamp time.Time
	Button    string
	Pin       int
	Type      button.EventType
}

// New configures pin as input with pull-up and returns a button reading it.
// now supplies sample times; nil means time.Now.
func New(driver gpio.Driver, pin int, cfg button.Config, now func() time.Time) (*PinButton, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := driver.ConfigureInputPullUp(pin); err != nil {
		return nil, fmt.Errorf("configure button pin %d: %w", pin, err)
	}
	if now == nil {
		now = time.Now
	}
	return &PinButton{
		pin:        pin,
		driver:     driver,
		now:        now,
		classifier: button.New(cfg),
	}, nil
}

// Update samples the pin and feeds the classifier.
// Low = pressed (switch closes to ground), High = released.
// On a read error the classifier is not updated.
func (b *PinButton) Update() error {
	level, err := b.driver.ReadPin(b.pin)
	if err != nil {
		return fmt.Errorf("read button pin %d: %w", b.pin, err)
	}
	b.sampledAt = b.now()
	b.classifier.Update(level == gpio.Low, b.sampledAt)
	return nil
}

// Emitted returns the events of the most recent Update, stamped with its
// sample time and labelled with name.
func (b *PinButton) Emitted(name string) []Event {
	types := b.classifier.Events().List()
	if len(types) == 0 {
		return nil
	}
	events := make([]Event, 0, len(types))
	for _, t := range types {
		events = append(events, Event{
			Timestamp: b.sampledAt,
			Button:    name,
			Pin:       b.pin,
			Type:      t,
		})
	}
	return events
}

// Pin returns the pin number.
func (b *PinButton) Pin() int {
	return b.pin
}

func (b *PinButton) Events() button.Events { return b.classifier.Events() }
func (b *PinButton) IsPressed() bool       { return b.classifier.IsPressed() }
func (b *PinButton) IsReleased() bool      { return b.classifier.IsReleased() }
func (b *PinButton) IsClick() bool         { return b.classifier.IsClick() }
func (b *PinButton) IsSingleClick() bool   { return b.classifier.IsSingleClick() }
func (b *PinButton) IsDoubleClick() bool   { return b.classifier.IsDoubleClick() }
func (b *PinButton) IsLongClick() bool     { return b.classifier.IsLongClick() }
func (b *PinButton) Down() bool            { return b.classifier.Down() }
func (b *PinButton) Phase() button.Phase   { return b.classifier.Phase() }
