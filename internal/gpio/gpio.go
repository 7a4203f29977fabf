// Package gpio provides digital input reading with hardware abstraction.
// The real implementations use the Linux GPIO character device, periph.io or
// go-rpio. The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Level is the electrical level of a pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// Driver is the digital I/O capability used by buttons.
type Driver interface {
	// ConfigureInputPullUp configures pin as an input with the internal
	// pull-up enabled. Configuring an already configured pin is a no-op.
	ConfigureInputPullUp(pin int) error

	// ReadPin returns the current raw level of pin.
	ReadPin(pin int) (Level, error)

	// Close releases GPIO resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendCdev   = "cdev"
	BackendPeriph = "periph"
	BackendRpio   = "rpio"
)

// DefaultChip is the character device used by the cdev backend.
const DefaultChip = "gpiochip0"

// Open returns the driver for the named backend. chip is only used by the
// cdev backend.
func Open(backend, chip string) (Driver, error) {
	var (
		d   Driver
		err error
	)
	switch backend {
	case BackendCdev, "":
		var c *CdevDriver
		if c, err = NewCdevDriver(chip); err == nil {
			d = c
		}
	case BackendPeriph:
		var p *PeriphDriver
		if p, err = NewPeriphDriver(); err == nil {
			d = p
		}
	case BackendRpio:
		var r *RpioDriver
		if r, err = NewRpioDriver(); err == nil {
			d = r
		}
	default:
		err = fmt.Errorf("gpio: unknown backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
