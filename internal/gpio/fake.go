package gpio

import "fmt"

var _ Driver = (*FakeDriver)(nil)

// FakeDriver is a test double that returns scripted pin levels.
type FakeDriver struct {
	// Samples contains scripted raw levels per pin.
	// Each call to ReadPin(pin) consumes the next level for that pin.
	Samples map[int][]Level

	// index tracks current position in Samples per pin
	index map[int]int

	// Configured counts ConfigureInputPullUp calls per pin
	Configured map[int]int

	// Closed tracks if Close was called
	Closed bool

	// ConfigureError, if set, will be returned by ConfigureInputPullUp()
	ConfigureError error

	// ReadError, if set, will be returned by ReadPin()
	ReadError error
}

// NewFakeDriver creates a FakeDriver with the given samples.
func NewFakeDriver(samples map[int][]Level) *FakeDriver {
	if samples == nil {
		samples = make(map[int][]Level)
	}
	return &FakeDriver{
		Samples:    samples,
		index:      make(map[int]int),
		Configured: make(map[int]int),
	}
}

// ConfigureInputPullUp records the configuration.
func (f *FakeDriver) ConfigureInputPullUp(pin int) error {
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.Configured[pin]++
	return nil
}

// ReadPin returns the next scripted level for pin.
// If samples are exhausted, returns the last level repeatedly.
// An unscripted pin reads High, the idle level of a pulled-up input.
func (f *FakeDriver) ReadPin(pin int) (Level, error) {
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	if f.Configured[pin] == 0 {
		return Low, fmt.Errorf("read pin %d: not configured", pin)
	}

	levels := f.Samples[pin]
	if len(levels) == 0 {
		return High, nil
	}

	i := f.index[pin]
	if i < len(levels)-1 {
		f.index[pin] = i + 1
	}
	return levels[i], nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds all pins to the beginning of their samples.
func (f *FakeDriver) Reset() {
	f.index = make(map[int]int)
	f.Closed = false
}
