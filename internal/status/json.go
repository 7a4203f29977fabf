package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Buttons       []ButtonJSON `json:"buttons"`
	Totals        CountsJSON   `json:"event_counts"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Name        string     `json:"name"`
	Pin         int        `json:"pin"`
	State       string     `json:"state"`
	Phase       string     `json:"phase"`
	LastEvent   string     `json:"last_event,omitempty"`
	LastEventAt string     `json:"last_event_at,omitempty"`
	Counts      CountsJSON `json:"event_counts"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Pressed     int `json:"pressed"`
	Released    int `json:"released"`
	Click       int `json:"click"`
	DoubleClick int `json:"double_click"`
	LongClick   int `json:"long_click"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend     string `json:"backend"`
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	SerialPort  string `json:"serial_port,omitempty"`
}

// StateString renders a debounced level.
func StateString(down bool) string {
	if down {
		return "PRESSED"
	}
	return "RELEASED"
}

func countsJSON(c EventCounts) CountsJSON {
	return CountsJSON{
		Pressed:     c.Pressed,
		Released:    c.Released,
		Click:       c.Click,
		DoubleClick: c.DoubleClick,
		LongClick:   c.LongClick,
	}
}

func buildInner(snap Snapshot) StatusInner {
	buttons := make([]ButtonJSON, 0, len(snap.Buttons))
	for _, b := range snap.Buttons {
		bj := ButtonJSON{
			Name:   b.Name,
			Pin:    b.Pin,
			State:  StateString(b.Down),
			Phase:  string(b.Phase),
			Counts: countsJSON(b.Counts),
		}
		if b.LastEvent != 0 {
			bj.LastEvent = b.LastEvent.String()
			bj.LastEventAt = b.LastEventAt.UTC().Format(time.RFC3339Nano)
		}
		buttons = append(buttons, bj)
	}

	return StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Buttons:       buttons,
		Totals:        countsJSON(snap.Totals()),
		Config: ConfigJSON{
			Backend:     snap.Config.Backend,
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			SerialPort:  snap.Config.SerialPort,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
