//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// CdevDriver reads GPIO from actual hardware using Linux GPIO character device.
type CdevDriver struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

// NewCdevDriver opens the named GPIO chip (DefaultChip when empty).
func NewCdevDriver(chip string) (*CdevDriver, error) {
	if chip == "" {
		chip = DefaultChip
	}
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &CdevDriver{
		chip:  c,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

// ConfigureInputPullUp requests the line as input with pull-up, or
// reconfigures it if it was already requested.
func (d *CdevDriver) ConfigureInputPullUp(pin int) error {
	if l, ok := d.lines[pin]; ok {
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			return fmt.Errorf("reconfigure pin %d: %w", pin, err)
		}
		return nil
	}
	l, err := d.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return fmt.Errorf("request pin %d: %w", pin, err)
	}
	d.lines[pin] = l
	return nil
}

// ReadPin returns the raw level of a configured pin.
func (d *CdevDriver) ReadPin(pin int) (Level, error) {
	l, ok := d.lines[pin]
	if !ok {
		return Low, fmt.Errorf("read pin %d: not configured", pin)
	}
	v, err := l.Value()
	if err != nil {
		return Low, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return Level(v != 0), nil
}

// Close releases all requested lines and the chip.
// Lines are left as inputs so the switches keep their pull-ups.
func (d *CdevDriver) Close() error {
	var errs []error

	for pin, l := range d.lines {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	d.lines = make(map[int]*gpiocdev.Line)

	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
