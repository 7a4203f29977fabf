// Package serialout writes button events as text lines to a serial port,
// for consumers such as a display controller or a host without a network.
package serialout

import (
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"github.com/sweeney/pin-button/internal/pinbutton"
)

// Publisher writes one line per event.
type Publisher struct {
	w io.WriteCloser
}

// New returns a publisher writing to w.
func New(w io.WriteCloser) *Publisher {
	return &Publisher{w: w}
}

// Open opens a serial port at the given baud rate.
func Open(port string, baud int) (*Publisher, error) {
	s, err := serial.OpenPort(&serial.Config{
		Name:        port,
		Baud:        baud,
		ReadTimeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return New(s), nil
}

// FormatLine renders an event as "<RFC3339 UTC> <button> <EVENT>\n".
func FormatLine(event pinbutton.Event) string {
	return fmt.Sprintf("%s %s %s\n",
		event.Timestamp.UTC().Format(time.RFC3339Nano), event.Button, event.Type)
}

// Publish writes the event line.
func (p *Publisher) Publish(event pinbutton.Event) error {
	if _, err := io.WriteString(p.w, FormatLine(event)); err != nil {
		return fmt.Errorf("write serial: %w", err)
	}
	return nil
}

// Close closes the port.
func (p *Publisher) Close() error {
	return p.w.Close()
}
