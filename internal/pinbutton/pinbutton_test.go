package pinbutton

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/pin-button/internal/button"
	"github.com/sweeney/pin-button/internal/gpio"
)

// fakeClock returns a function that yields start, start+step, start+2*step, ...
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

// repeat returns n copies of level.
func repeat(level gpio.Level, n int) []gpio.Level {
	out := make([]gpio.Level, n)
	for i := range out {
		out[i] = level
	}
	return out
}

// levels concatenates sample runs.
func levels(runs ...[]gpio.Level) []gpio.Level {
	var out []gpio.Level
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

var start = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewConfiguresPullUp(t *testing.T) {
	drv := gpio.NewFakeDriver(nil)
	b, err := New(drv, 5, button.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drv.Configured[5] != 1 {
		t.Errorf("expected pin 5 configured once, got %d", drv.Configured[5])
	}
	if b.Pin() != 5 {
		t.Errorf("expected pin 5, got %d", b.Pin())
	}
	if drv.Configured[5] != 1 {
		t.Error("Pin() must not touch the driver")
	}
}

func TestNewConfigureError(t *testing.T) {
	drv := gpio.NewFakeDriver(nil)
	drv.ConfigureError = errors.New("busy")

	if _, err := New(drv, 5, button.DefaultConfig(), nil); err == nil {
		t.Fatal("expected configure error")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	drv := gpio.NewFakeDriver(nil)
	cfg := button.DefaultConfig()
	cfg.LongClickDelay = -time.Second

	if _, err := New(drv, 5, cfg, nil); err == nil {
		t.Fatal("expected config error")
	}
	if drv.Configured[5] != 0 {
		t.Error("pin should not be configured for an invalid config")
	}
}

func TestUpdateActiveLow(t *testing.T) {
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: {gpio.High, gpio.Low, gpio.High}})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	b.Update()
	if b.Down() {
		t.Error("HIGH should read as released")
	}
	b.Update()
	if !b.Down() || !b.IsPressed() {
		t.Error("LOW should read as pressed")
	}
	b.Update()
	if b.Down() || !b.IsReleased() {
		t.Error("HIGH after LOW should release")
	}
}

func TestUpdateClick(t *testing.T) {
	// 10ms polling: 10 samples pressed (0-90ms), then released
	script := levels(repeat(gpio.High, 1), repeat(gpio.Low, 10), repeat(gpio.High, 40))
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: script})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	clicks := 0
	for range script {
		if err := b.Update(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.IsClick() {
			clicks++
			if !b.IsSingleClick() {
				t.Error("IsSingleClick should agree with IsClick")
			}
		}
		if b.IsDoubleClick() || b.IsLongClick() {
			t.Errorf("unexpected events %s", b.Events())
		}
	}
	if clicks != 1 {
		t.Errorf("expected 1 click, got %d", clicks)
	}
	if b.Phase() != button.PhaseIdle {
		t.Errorf("expected IDLE, got %s", b.Phase())
	}
}

func TestUpdateDoubleClick(t *testing.T) {
	script := levels(repeat(gpio.Low, 5), repeat(gpio.High, 5), repeat(gpio.Low, 5), repeat(gpio.High, 40))
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: script})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	doubles, clicks := 0, 0
	for range script {
		b.Update()
		if b.IsDoubleClick() {
			doubles++
		}
		if b.IsClick() {
			clicks++
		}
	}
	if doubles != 1 || clicks != 0 {
		t.Errorf("expected 1 double click and no clicks, got %d/%d", doubles, clicks)
	}
}

func TestUpdateLongClick(t *testing.T) {
	script := levels(repeat(gpio.Low, 40), repeat(gpio.High, 40))
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: script})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	longs, clicks, releases := 0, 0, 0
	for range script {
		b.Update()
		if b.IsLongClick() {
			longs++
		}
		if b.IsClick() {
			clicks++
		}
		if b.IsReleased() {
			releases++
		}
	}
	if longs != 1 || clicks != 0 || releases != 1 {
		t.Errorf("expected 1 long, 0 clicks, 1 release, got %d/%d/%d", longs, clicks, releases)
	}
}

func TestUpdateReadError(t *testing.T) {
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: {gpio.Low}})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	drv.ReadError = errors.New("gpio fault")
	if err := b.Update(); err == nil {
		t.Fatal("expected read error")
	}
	if b.Down() || b.Phase() != button.PhaseIdle {
		t.Error("classifier should not be updated on a read error")
	}

	drv.ReadError = nil
	if err := b.Update(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.IsPressed() {
		t.Error("expected press after the fault clears")
	}
}

func TestDefaultClock(t *testing.T) {
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: {gpio.Low}})
	b, err := New(drv, 5, button.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Update(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.IsPressed() {
		t.Error("expected press with the wall clock")
	}
}

func TestEmitted(t *testing.T) {
	drv := gpio.NewFakeDriver(map[int][]gpio.Level{5: {gpio.High, gpio.Low}})
	b, _ := New(drv, 5, button.DefaultConfig(), fakeClock(start, 10*time.Millisecond))

	b.Update()
	if ev := b.Emitted("door"); ev != nil {
		t.Errorf("expected no events, got %v", ev)
	}

	b.Update()
	ev := b.Emitted("door")
	if len(ev) != 1 {
		t.Fatalf("expected 1 event, got %d", len(ev))
	}
	if ev[0].Type != button.EventPressed {
		t.Errorf("expected PRESSED, got %s", ev[0].Type)
	}
	if ev[0].Button != "door" || ev[0].Pin != 5 {
		t.Errorf("unexpected labels: %+v", ev[0])
	}
	if !ev[0].Timestamp.Equal(start.Add(10 * time.Millisecond)) {
		t.Errorf("unexpected timestamp: %v", ev[0].Timestamp)
	}
}
