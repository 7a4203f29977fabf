package main

import (
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/pin-button/internal/mqtt"
	"github.com/sweeney/pin-button/internal/status"
)

// loop polls the buttons on every tick and fans their events out.
type loop struct {
	buttons    []namedButton
	clock      *tickClock
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	sinks      []eventSink
	tracker    *status.Tracker
	heartbeat  time.Duration
	now        func() time.Time
	log        *zap.SugaredLogger

	startTime     time.Time
	lastHeartbeat time.Time
}

func (l *loop) run(tick <-chan time.Time, sig <-chan os.Signal) error {
	l.startTime = l.now()
	l.lastHeartbeat = l.startTime

	for {
		select {
		case s := <-sig:
			l.log.Infof("received %v, shutting down", s)
			l.shutdown(signalName(s))
			return nil

		case <-tick:
			t := l.now()
			l.clock.t = t
			l.poll()
			if l.heartbeatDue(t) {
				l.publishHeartbeat(t)
			}
			if l.tracker != nil && l.mqttStatus != nil {
				l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
			}
		}
	}
}

// poll updates every button in order. Buttons are independent: a read error
// on one is logged and does not stop the others.
func (l *loop) poll() {
	for _, b := range l.buttons {
		if err := b.Update(); err != nil {
			l.log.Warnf("gpio read error: %v", err)
			continue
		}

		for _, event := range b.Emitted(b.name) {
			l.log.Debugf("event: %s %s (pin %d)", event.Button, event.Type, event.Pin)
			if l.tracker != nil {
				l.tracker.Record(event)
			}
			for _, s := range l.sinks {
				if err := s.Publish(event); err != nil {
					// Don't crash on publish failure
					l.log.Warnf("publish error: %v", err)
				}
			}
		}

		if l.tracker != nil {
			l.tracker.UpdateButton(b.name, b.Down(), b.Phase())
		}
	}
}

// heartbeatDue reports whether the heartbeat interval has elapsed since the
// last heartbeat (or startup). A non-positive interval disables heartbeats.
func (l *loop) heartbeatDue(now time.Time) bool {
	if l.heartbeat <= 0 {
		return false
	}
	if now.Sub(l.lastHeartbeat) < l.heartbeat {
		return false
	}
	l.lastHeartbeat = now
	return true
}

func (l *loop) publishHeartbeat(now time.Time) {
	event := mqtt.SystemEvent{
		Timestamp: now,
		Event:     "HEARTBEAT",
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		snap := l.tracker.Snapshot()
		totals := snap.Totals()
		l.log.Infof("heartbeat: uptime=%v clicks=%d double=%d long=%d",
			now.Sub(l.startTime), totals.Click, totals.DoubleClick, totals.LongClick)
		event.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		l.log.Warnf("heartbeat publish error: %v", err)
	}
}

func (l *loop) shutdown(reason string) {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		l.log.Warnf("failed to publish shutdown event: %v", err)
	} else {
		l.log.Infof("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
