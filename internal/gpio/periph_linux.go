//go:build linux

package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver reads GPIO through periph.io. Pins are addressed by their
// BCM numbers.
type PeriphDriver struct {
	pins map[int]pgpio.PinIO
}

// NewPeriphDriver initialises the periph host drivers.
func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	return &PeriphDriver{pins: make(map[int]pgpio.PinIO)}, nil
}

// ConfigureInputPullUp sets the pin as input with pull-up and no edge detection.
func (d *PeriphDriver) ConfigureInputPullUp(pin int) error {
	p, ok := d.pins[pin]
	if !ok {
		p = gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
		if p == nil {
			return fmt.Errorf("pin %d: no such GPIO", pin)
		}
	}
	if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
		return fmt.Errorf("configure pin %d: %w", pin, err)
	}
	d.pins[pin] = p
	return nil
}

// ReadPin returns the raw level of a configured pin.
func (d *PeriphDriver) ReadPin(pin int) (Level, error) {
	p, ok := d.pins[pin]
	if !ok {
		return Low, fmt.Errorf("read pin %d: not configured", pin)
	}
	return Level(p.Read() == pgpio.High), nil
}

// Close forgets configured pins. periph keeps no per-pin handles to release.
func (d *PeriphDriver) Close() error {
	d.pins = make(map[int]pgpio.PinIO)
	return nil
}
