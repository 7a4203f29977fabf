//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// CdevDriver is not available on non-Linux platforms.
type CdevDriver struct{ unsupported }

// NewCdevDriver returns an error on non-Linux platforms.
func NewCdevDriver(chip string) (*CdevDriver, error) {
	return nil, errUnsupported
}

// PeriphDriver is not available on non-Linux platforms.
type PeriphDriver struct{ unsupported }

// NewPeriphDriver returns an error on non-Linux platforms.
func NewPeriphDriver() (*PeriphDriver, error) {
	return nil, errUnsupported
}

// RpioDriver is not available on non-Linux platforms.
type RpioDriver struct{ unsupported }

// NewRpioDriver returns an error on non-Linux platforms.
func NewRpioDriver() (*RpioDriver, error) {
	return nil, errUnsupported
}

type unsupported struct{}

func (unsupported) ConfigureInputPullUp(pin int) error { return errUnsupported }

func (unsupported) ReadPin(pin int) (Level, error) { return Low, errUnsupported }

func (unsupported) Close() error { return nil }
