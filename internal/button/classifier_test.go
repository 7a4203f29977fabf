package button

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

// step feeds one sample at ms and returns the resulting events.
func step(c *Classifier, ms int, pressed bool) Events {
	c.Update(pressed, at(ms))
	return c.Events()
}

// hold feeds the same level every 10ms over [from, to] and counts the events.
func hold(c *Classifier, from, to int, pressed bool) map[EventType]int {
	counts := make(map[EventType]int)
	for ms := from; ms <= to; ms += 10 {
		for _, e := range step(c, ms, pressed).List() {
			counts[e]++
		}
	}
	return counts
}

func TestNew(t *testing.T) {
	c := New(DefaultConfig())
	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("expected phase IDLE, got %s", c.Phase())
	}
	if c.Down() {
		t.Error("new classifier should not be down")
	}
	if c.Events() != 0 {
		t.Errorf("expected no events, got %s", c.Events())
	}
	cfg := c.Config()
	if cfg.SingleClickDelay != 250*time.Millisecond {
		t.Errorf("expected single click delay 250ms, got %v", cfg.SingleClickDelay)
	}
	if cfg.LongClickDelay != 300*time.Millisecond {
		t.Errorf("expected long click delay 300ms, got %v", cfg.LongClickDelay)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config: unexpected error: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"single", Config{SingleClickDelay: -1, LongClickDelay: 300 * time.Millisecond}},
		{"long", Config{SingleClickDelay: 250 * time.Millisecond, LongClickDelay: -1}},
		{"debounce", Config{SingleClickDelay: 250 * time.Millisecond, LongClickDelay: 300 * time.Millisecond, DebounceDelay: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected error for negative duration")
			}
		})
	}
}

func TestSingleClickScenario(t *testing.T) {
	c := New(DefaultConfig())

	if ev := step(c, 0, true); ev != Events(EventPressed) {
		t.Errorf("t=0: expected PRESSED, got %s", ev)
	}
	if !c.IsPressed() {
		t.Error("t=0: IsPressed should be true")
	}

	counts := hold(c, 10, 90, true)
	if len(counts) != 0 {
		t.Errorf("expected no events while held, got %v", counts)
	}

	step(c, 100, false)
	if !c.IsReleased() {
		t.Error("t=100: IsReleased should be true after release")
	}
	if c.IsClick() || c.IsDoubleClick() || c.IsLongClick() {
		t.Errorf("t=100: unexpected events %s", c.Events())
	}
	if c.Phase() != PhaseWaitSecondClick {
		t.Errorf("t=100: expected WAIT_SECOND_CLICK, got %s", c.Phase())
	}

	// Window is still open just before release + 250ms
	counts = hold(c, 110, 340, false)
	if len(counts) != 0 {
		t.Errorf("expected no events inside double-click window, got %v", counts)
	}

	step(c, 350, false)
	if !c.IsClick() {
		t.Error("t=350: IsClick should be true once the window closes")
	}
	if !c.IsSingleClick() {
		t.Error("t=350: IsSingleClick should match IsClick")
	}
	if c.IsDoubleClick() || c.IsLongClick() || c.IsReleased() {
		t.Errorf("t=350: unexpected events %s", c.Events())
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("t=350: expected IDLE, got %s", c.Phase())
	}

	// Click is not sticky
	step(c, 360, false)
	if c.IsClick() {
		t.Error("t=360: IsClick should reset on the next update")
	}
}

func TestSingleClickIsDelayedRelease(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)
	if !c.IsReleased() || c.IsSingleClick() {
		t.Errorf("a short release is reported at once, the click is not: %s", c.Events())
	}

	// A second press cancels the single click
	step(c, 200, true)
	step(c, 250, false)
	hold(c, 260, 600, false)
	if c.IsSingleClick() {
		t.Error("IsSingleClick after a double click")
	}

	step(c, 700, true)
	step(c, 750, false)
	for ms := 760; ms <= 1000; ms += 10 {
		step(c, ms, false)
		if c.IsSingleClick() != c.IsClick() {
			t.Fatalf("t=%d: IsSingleClick and IsClick disagree", ms)
		}
		if c.IsClick() && ms != 1000 {
			t.Errorf("t=%d: click before the window closed", ms)
		}
	}
	if !c.IsSingleClick() {
		t.Error("expected a single click once the window closed at 1000")
	}
}

func TestDoubleClickScenario(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)
	if !c.IsReleased() {
		t.Error("t=100: expected first release")
	}

	step(c, 150, true)
	if !c.IsPressed() {
		t.Error("t=150: expected second press")
	}
	if c.Phase() != PhaseSecondPressed {
		t.Errorf("t=150: expected SECOND_PRESSED, got %s", c.Phase())
	}

	step(c, 200, false)
	if !c.IsDoubleClick() {
		t.Error("t=200: IsDoubleClick should be true")
	}
	if c.IsClick() {
		t.Error("t=200: IsClick should be false")
	}
	if !c.IsReleased() {
		t.Error("t=200: second release should also report RELEASED")
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("t=200: expected IDLE, got %s", c.Phase())
	}

	counts := hold(c, 210, 1000, false)
	if counts[EventClick] != 0 {
		t.Errorf("expected no click after double-click, got %d", counts[EventClick])
	}
}

func TestLongClickScenario(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	counts := hold(c, 10, 290, true)
	if counts[EventLongClick] != 0 {
		t.Error("long click fired before the threshold")
	}

	step(c, 300, true)
	if !c.IsLongClick() {
		t.Error("t=300: IsLongClick should be true")
	}
	if c.Phase() != PhaseLongPressed {
		t.Errorf("t=300: expected LONG_PRESSED, got %s", c.Phase())
	}

	counts = hold(c, 310, 390, true)
	if counts[EventLongClick] != 0 {
		t.Errorf("long click fired again while held: %d", counts[EventLongClick])
	}

	step(c, 400, false)
	if c.Events() != Events(EventReleased) {
		t.Errorf("t=400: expected only RELEASED, got %s", c.Events())
	}

	counts = hold(c, 410, 1200, false)
	if len(counts) != 0 {
		t.Errorf("expected no events after long click release, got %v", counts)
	}
}

func TestLongClickBoundaryInclusive(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 299, true)
	if c.IsLongClick() {
		t.Error("t=299: should not be a long click yet")
	}
	step(c, 300, true)
	if !c.IsLongClick() {
		t.Error("t=300: a press held exactly LongClickDelay is a long click")
	}
}

func TestLongClickCrossedBetweenSamples(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	ev := step(c, 300, false)
	if !ev.Has(EventLongClick) || !ev.Has(EventReleased) {
		t.Errorf("expected LONG_CLICK|RELEASED, got %s", ev)
	}
	if ev.Has(EventClick) {
		t.Error("release of a long press must not click")
	}

	counts := hold(c, 310, 1000, false)
	if counts[EventClick] != 0 {
		t.Errorf("expected no click after long press, got %d", counts[EventClick])
	}
}

func TestDoubleClickWindowExclusive(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)

	// Gap equal to SingleClickDelay closes the window first
	ev := step(c, 350, true)
	if !ev.Has(EventClick) {
		t.Errorf("t=350: expected CLICK for the first press, got %s", ev)
	}
	if !ev.Has(EventPressed) {
		t.Errorf("t=350: expected a new PRESSED, got %s", ev)
	}
	if c.Phase() != PhasePressed {
		t.Errorf("t=350: expected PRESSED, got %s", c.Phase())
	}

	step(c, 400, false)
	if c.IsDoubleClick() {
		t.Error("t=400: gap equal to the window must not double-click")
	}

	step(c, 650, false)
	if !c.IsClick() {
		t.Error("t=650: second press should be its own click")
	}
}

func TestDoubleClickJustInsideWindow(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)
	step(c, 349, true)
	step(c, 400, false)
	if !c.IsDoubleClick() {
		t.Error("gap of 249ms should double-click")
	}
}

func TestSecondPressIgnoresLongThreshold(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)
	step(c, 150, true)

	counts := hold(c, 160, 800, true)
	if counts[EventLongClick] != 0 {
		t.Error("second press of a pair should not long click")
	}

	step(c, 810, false)
	if !c.IsDoubleClick() {
		t.Error("expected DOUBLE_CLICK on release of the second press")
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 100, false)
	step(c, 350, false)

	for i := 0; i < 5; i++ {
		if !c.IsClick() {
			t.Fatalf("call %d: IsClick changed between updates", i)
		}
		if c.IsDoubleClick() || c.IsLongClick() || c.IsReleased() || c.IsPressed() {
			t.Fatalf("call %d: unexpected events %s", i, c.Events())
		}
	}
}

func TestRepeatedClicks(t *testing.T) {
	c := New(DefaultConfig())

	total := make(map[EventType]int)
	for i := 0; i < 5; i++ {
		base := i * 1000
		for _, e := range step(c, base, true).List() {
			total[e]++
		}
		for e, n := range hold(c, base+10, base+90, true) {
			total[e] += n
		}
		for e, n := range hold(c, base+100, base+900, false) {
			total[e] += n
		}
	}

	if total[EventClick] != 5 {
		t.Errorf("expected 5 clicks, got %d", total[EventClick])
	}
	if total[EventPressed] != 5 || total[EventReleased] != 5 {
		t.Errorf("expected 5 presses and releases, got %d/%d", total[EventPressed], total[EventReleased])
	}
	if total[EventDoubleClick] != 0 || total[EventLongClick] != 0 {
		t.Errorf("unexpected double/long clicks: %v", total)
	}
}

func TestNonMonotonicClockClamped(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 100, true)
	// Clock jumps backwards: elapsed clamps to zero, not a long click
	ev := step(c, 50, false)
	if ev.Has(EventLongClick) {
		t.Error("negative elapsed time must not trigger a long click")
	}
	if !ev.Has(EventReleased) {
		t.Errorf("expected RELEASED, got %s", ev)
	}

	step(c, 40, false)
	if c.IsClick() {
		t.Error("negative elapsed time must not close the double-click window")
	}

	step(c, 300, false)
	if !c.IsClick() {
		t.Error("expected CLICK once 250ms passed after the release")
	}
}

func debounced(ms int) *Classifier {
	cfg := DefaultConfig()
	cfg.DebounceDelay = time.Duration(ms) * time.Millisecond
	return New(cfg)
}

func TestDebounceDropsGlitch(t *testing.T) {
	c := debounced(20)

	if ev := step(c, 0, true); ev != 0 {
		t.Errorf("unsettled press produced events %s", ev)
	}
	counts := hold(c, 10, 600, false)
	if len(counts) != 0 {
		t.Errorf("a one-sample glitch should produce no events, got %v", counts)
	}
	if c.Down() || c.Phase() != PhaseIdle {
		t.Errorf("expected released and IDLE, got down=%v phase=%s", c.Down(), c.Phase())
	}
}

func TestDebounceRejectsBounces(t *testing.T) {
	c := debounced(20)

	// Contact bounce while closing
	for _, s := range []struct {
		ms      int
		pressed bool
	}{
		{0, true}, {5, false}, {8, true}, {12, false}, {15, true},
	} {
		if ev := step(c, s.ms, s.pressed); ev != 0 {
			t.Errorf("t=%d: bounce produced events %s", s.ms, ev)
		}
		if c.Down() {
			t.Errorf("t=%d: debounced level should stay released", s.ms)
		}
	}

	step(c, 30, true)
	if c.IsPressed() {
		t.Error("press has not held for 20ms yet")
	}
	step(c, 35, true)
	if !c.IsPressed() {
		t.Fatal("press held for 20ms should be accepted")
	}

	// Bounce while opening
	step(c, 100, false)
	step(c, 105, true)
	if c.IsReleased() || !c.Down() {
		t.Error("reverted release should be dropped")
	}
	step(c, 110, false)
	step(c, 125, false)
	if c.IsReleased() {
		t.Error("release has not held for 20ms yet")
	}
	step(c, 130, false)
	if !c.IsReleased() {
		t.Fatal("release held for 20ms should be accepted")
	}

	counts := hold(c, 140, 600, false)
	if counts[EventClick] != 1 || len(counts) != 1 {
		t.Errorf("expected a single click, got %v", counts)
	}
}

func TestDebounceMeasuresFromFirstEdge(t *testing.T) {
	c := debounced(20)

	// Press sampled from 0, accepted at 20
	step(c, 0, true)
	step(c, 10, true)
	step(c, 20, true)
	if !c.IsPressed() {
		t.Fatal("expected PRESSED once the press settled")
	}

	// Release sampled from 100, accepted at 120
	step(c, 100, false)
	step(c, 110, false)
	step(c, 120, false)
	if !c.IsReleased() {
		t.Fatal("expected RELEASED once the release settled")
	}

	// The window runs from the release edge at 100
	step(c, 340, false)
	if c.IsClick() {
		t.Error("window should still be open at 340")
	}
	step(c, 350, false)
	if !c.IsClick() {
		t.Error("expected CLICK 250ms after the release edge")
	}
}

func TestDebounceHeldTimeEndsAtReleaseEdge(t *testing.T) {
	c := debounced(20)

	step(c, 0, true)
	step(c, 20, true)

	// Release starts at 290, before the 300ms threshold
	step(c, 290, false)
	step(c, 300, false)
	if c.IsLongClick() {
		t.Error("a pending release at 290 should hold off the long click")
	}
	step(c, 310, false)
	if !c.IsReleased() || c.IsLongClick() {
		t.Errorf("expected a short release, got %s", c.Events())
	}
}

func TestDebouncePendingPressKeepsWindowOpen(t *testing.T) {
	c := debounced(20)

	step(c, 0, true)
	step(c, 20, true)
	step(c, 100, false)
	step(c, 120, false)

	// Second press starts at 340, inside the window, settles at 360
	step(c, 340, true)
	step(c, 350, true)
	if c.IsClick() {
		t.Error("window closed while an in-window press was settling")
	}
	step(c, 360, true)
	if !c.IsPressed() || c.Phase() != PhaseSecondPressed {
		t.Fatalf("expected second press, got %s in %s", c.Events(), c.Phase())
	}
	step(c, 400, false)
	step(c, 420, false)
	if !c.IsDoubleClick() {
		t.Errorf("expected DOUBLE_CLICK, got %s", c.Events())
	}
}

func TestDebounceZeroAcceptsEveryChange(t *testing.T) {
	c := New(DefaultConfig())

	step(c, 0, true)
	step(c, 1, false)
	if !c.IsReleased() {
		t.Error("without debouncing every change is an edge")
	}
}

func TestButtonsAreIndependent(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())

	step(a, 0, true)
	step(b, 0, false)
	step(a, 100, false)
	step(b, 100, true)

	if a.Phase() != PhaseWaitSecondClick {
		t.Errorf("a: expected WAIT_SECOND_CLICK, got %s", a.Phase())
	}
	if b.Phase() != PhasePressed {
		t.Errorf("b: expected PRESSED, got %s", b.Phase())
	}
}

func TestEventsListOrder(t *testing.T) {
	ev := Events(EventReleased) | Events(EventPressed) | Events(EventClick)
	got := ev.List()
	want := []EventType{EventClick, EventPressed, EventReleased}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if s := ev.String(); s != "CLICK|PRESSED|RELEASED" {
		t.Errorf("unexpected string: %s", s)
	}
	if s := Events(0).String(); s != "NONE" {
		t.Errorf("expected NONE, got %s", s)
	}
}

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		e    EventType
		want string
	}{
		{EventPressed, "PRESSED"},
		{EventReleased, "RELEASED"},
		{EventClick, "CLICK"},
		{EventDoubleClick, "DOUBLE_CLICK"},
		{EventLongClick, "LONG_CLICK"},
		{EventType(0), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
