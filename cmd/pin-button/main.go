// Command pin-button polls switches wired between GPIO pins and ground,
// classifies presses into click, double-click and long-click events, and
// publishes them to MQTT (and optionally a serial port).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/pin-button/internal/config"
	"github.com/sweeney/pin-button/internal/gpio"
	"github.com/sweeney/pin-button/internal/mqtt"
	"github.com/sweeney/pin-button/internal/pinbutton"
	"github.com/sweeney/pin-button/internal/serialout"
	"github.com/sweeney/pin-button/internal/status"
	"github.com/sweeney/pin-button/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (buttons, broker, ...)")
	backend := flag.String("backend", gpio.BackendCdev, "GPIO backend: cdev, periph or rpio")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO chip for the cdev backend")
	pin := flag.Int("pin", config.DefaultPin, "BCM pin of the button (without -config)")
	debounce := flag.Duration("debounce", config.DefaultDebounce, "Debounce lock-out (without -config)")
	poll := flag.Duration("poll", config.DefaultPoll, "GPIO polling interval")
	broker := flag.String("broker", config.DefaultBroker, "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", config.DefaultHeartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", config.DefaultHTTPAddr, "HTTP status address (empty to disable)")
	serialPort := flag.String("serial", "", "Serial port for event lines (empty to disable)")
	baud := flag.Int("baud", config.DefaultBaud, "Serial baud rate")
	printState := flag.Bool("print-state", false, "Print current button levels and exit")
	debug := flag.Bool("debug", false, "Debug logging")

	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	overrides := flagOverrides{
		backend: *backend, chip: *chip, pin: *pin, debounce: *debounce, poll: *poll,
		broker: *broker, heartbeat: *heartbeat, httpAddr: *httpAddr,
		serialPort: *serialPort, baud: *baud,
	}
	if *configPath != "" {
		for _, name := range ignoredFlags(set) {
			log.Warnf("-%s ignored: buttons come from %s", name, *configPath)
		}
	}
	if err := overrides.apply(cfg, set, *configPath == ""); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState, log); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// flagOverrides holds flag values that replace config file settings when
// given explicitly.
type flagOverrides struct {
	backend, chip  string
	pin            int
	debounce, poll time.Duration
	broker         string
	heartbeat      time.Duration
	httpAddr       string
	serialPort     string
	baud           int
}

func (o flagOverrides) apply(cfg *config.Config, set map[string]bool, defaultButton bool) error {
	if set["backend"] {
		cfg.Backend = o.backend
	}
	if set["chip"] {
		cfg.Chip = o.chip
	}
	if set["poll"] {
		cfg.Poll = o.poll
	}
	if set["broker"] {
		cfg.Broker = o.broker
	}
	if set["heartbeat"] {
		cfg.Heartbeat = o.heartbeat
	}
	if set["http"] {
		cfg.HTTPAddr = o.httpAddr
	}
	if set["serial"] {
		cfg.SerialPort = o.serialPort
	}
	if set["baud"] {
		cfg.Baud = o.baud
	}
	if defaultButton {
		b := config.DefaultButton(o.pin)
		b.Timing.DebounceDelay = o.debounce
		cfg.Buttons = []config.Button{b}
	}
	return cfg.Validate()
}

// buttonFlags only describe the default button and have no effect when
// buttons come from a config file.
var buttonFlags = []string{"pin", "debounce"}

// ignoredFlags returns the explicitly set flags that a config file overrides.
func ignoredFlags(set map[string]bool) []string {
	var out []string
	for _, name := range buttonFlags {
		if set[name] {
			out = append(out, name)
		}
	}
	return out
}

// eventSink receives every classified button event.
type eventSink interface {
	Publish(event pinbutton.Event) error
}

// namedButton is a configured button being polled.
type namedButton struct {
	name string
	*pinbutton.PinButton
}

// tickClock hands every button of a tick the same sample time.
type tickClock struct {
	t time.Time
}

func (c *tickClock) Now() time.Time { return c.t }

func openButtons(driver gpio.Driver, cfg *config.Config, clock func() time.Time) ([]namedButton, error) {
	buttons := make([]namedButton, 0, len(cfg.Buttons))
	for _, b := range cfg.Buttons {
		pb, err := pinbutton.New(driver, b.Pin, b.Timing, clock)
		if err != nil {
			return nil, fmt.Errorf("button %s: %w", b.Name, err)
		}
		buttons = append(buttons, namedButton{name: b.Name, PinButton: pb})
	}
	return buttons, nil
}

func run(cfg *config.Config, printState bool, log *zap.SugaredLogger) error {
	// Initialize GPIO
	driver, err := gpio.Open(cfg.Backend, cfg.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer driver.Close()

	clock := &tickClock{t: time.Now()}
	buttons, err := openButtons(driver, cfg, clock.Now)
	if err != nil {
		return err
	}

	// Print state mode
	if printState {
		for _, b := range buttons {
			if err := b.Update(); err != nil {
				return fmt.Errorf("read gpio: %w", err)
			}
			fmt.Printf("%s (pin %d): %s\n", b.name, b.Pin(), status.StateString(b.Down()))
		}
		return nil
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(cfg.Broker, log)
	defer publisher.Close()

	sinks := []eventSink{publisher}
	if cfg.SerialPort != "" {
		sp, err := serialout.Open(cfg.SerialPort, cfg.Baud)
		if err != nil {
			return err
		}
		defer sp.Close()
		sinks = append(sinks, sp)
		log.Infof("writing events to serial port %s @ %d", cfg.SerialPort, cfg.Baud)
	}

	infos := make([]status.ButtonInfo, 0, len(buttons))
	for _, b := range buttons {
		infos = append(infos, status.ButtonInfo{Name: b.name, Pin: b.Pin()})
	}
	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:     cfg.Backend,
		PollMs:      cfg.Poll.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		SerialPort:  cfg.SerialPort,
	}, infos)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	} else {
		log.Infof("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Infof("http status server listening on %s", cfg.HTTPAddr)
	}

	for _, b := range cfg.Buttons {
		log.Infof("button %s: pin=%d single=%v long=%v debounce=%v",
			b.Name, b.Pin, b.Timing.SingleClickDelay, b.Timing.LongClickDelay, b.Timing.DebounceDelay)
	}
	log.Infof("started: backend=%s poll=%v broker=%s heartbeat=%v", cfg.Backend, cfg.Poll, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		buttons:    buttons,
		clock:      clock,
		publisher:  publisher,
		mqttStatus: publisher,
		sinks:      sinks,
		tracker:    tracker,
		heartbeat:  cfg.Heartbeat,
		now:        time.Now,
		log:        log,
	}
	return l.run(ticker.C, sigCh)
}
