//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioDriver reads GPIO through /dev/gpiomem memory mapping (Raspberry Pi only).
type RpioDriver struct {
	pins map[int]rpio.Pin
}

// NewRpioDriver maps the GPIO registers.
func NewRpioDriver() (*RpioDriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}
	return &RpioDriver{pins: make(map[int]rpio.Pin)}, nil
}

// ConfigureInputPullUp sets the pin as input with pull-up.
func (d *RpioDriver) ConfigureInputPullUp(pin int) error {
	p := rpio.Pin(pin)
	p.Input()
	p.PullUp()
	d.pins[pin] = p
	return nil
}

// ReadPin returns the raw level of a configured pin.
func (d *RpioDriver) ReadPin(pin int) (Level, error) {
	p, ok := d.pins[pin]
	if !ok {
		return Low, fmt.Errorf("read pin %d: not configured", pin)
	}
	return Level(p.Read() == rpio.High), nil
}

// Close unmaps the GPIO registers.
func (d *RpioDriver) Close() error {
	d.pins = make(map[int]rpio.Pin)
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
