// Package config loads the daemon and button configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sweeney/pin-button/internal/button"
	"github.com/sweeney/pin-button/internal/gpio"
)

const (
	configType = "yaml"

	configKeyBackend   = "backend"
	configKeyChip      = "chip"
	configKeyPollMs    = "poll_ms"
	configKeyBroker    = "broker"
	configKeyHeartbeat = "heartbeat_s"
	configKeyHTTP      = "http"
	configKeySerial    = "serial_port"
	configKeyBaud      = "baud_rate"
	configKeyButtons   = "buttons"

	DefaultPoll      = 10 * time.Millisecond
	DefaultBroker    = "tcp://192.168.1.200:1883"
	DefaultHeartbeat = 15 * time.Minute
	DefaultHTTPAddr  = ":80"
	DefaultBaud      = 115200
	DefaultPin       = 17
	DefaultDebounce  = 20 * time.Millisecond
)

// Config is the complete daemon configuration.
type Config struct {
	Backend    string
	Chip       string
	Poll       time.Duration
	Broker     string
	Heartbeat  time.Duration
	HTTPAddr   string
	SerialPort string // empty disables serial output
	Baud       int
	Buttons    []Button
}

// Button is one switch wired between Pin and ground.
type Button struct {
	Name   string
	Pin    int
	Timing button.Config
}

// rawButton mirrors one entry of the buttons list. Pointer fields
// distinguish "unset" from an explicit zero.
type rawButton struct {
	Name          string `mapstructure:"name"`
	Pin           *int   `mapstructure:"pin"`
	SingleClickMs *int   `mapstructure:"single_click_ms"`
	LongClickMs   *int   `mapstructure:"long_click_ms"`
	DebounceMs    *int   `mapstructure:"debounce_ms"`
}

// Default returns the configuration used without a config file:
// one button on DefaultPin.
func Default() *Config {
	return &Config{
		Backend:   gpio.BackendCdev,
		Chip:      gpio.DefaultChip,
		Poll:      DefaultPoll,
		Broker:    DefaultBroker,
		Heartbeat: DefaultHeartbeat,
		HTTPAddr:  DefaultHTTPAddr,
		Baud:      DefaultBaud,
		Buttons:   []Button{DefaultButton(DefaultPin)},
	}
}

// DefaultButton returns a button on pin with default timing.
func DefaultButton(pin int) Button {
	timing := button.DefaultConfig()
	timing.DebounceDelay = DefaultDebounce
	return Button{
		Name:   fmt.Sprintf("button%d", pin),
		Pin:    pin,
		Timing: timing,
	}
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return fromViper(v)
}

// Parse reads YAML config from r.
func Parse(r io.Reader) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return fromViper(v)
}

func newViper() *viper.Viper {
	d := Default()
	v := viper.New()
	v.SetConfigType(configType)
	v.SetDefault(configKeyBackend, d.Backend)
	v.SetDefault(configKeyChip, d.Chip)
	v.SetDefault(configKeyPollMs, d.Poll.Milliseconds())
	v.SetDefault(configKeyBroker, d.Broker)
	v.SetDefault(configKeyHeartbeat, int(d.Heartbeat.Seconds()))
	v.SetDefault(configKeyHTTP, d.HTTPAddr)
	v.SetDefault(configKeySerial, "")
	v.SetDefault(configKeyBaud, d.Baud)
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Backend:    v.GetString(configKeyBackend),
		Chip:       v.GetString(configKeyChip),
		Poll:       time.Duration(v.GetInt64(configKeyPollMs)) * time.Millisecond,
		Broker:     v.GetString(configKeyBroker),
		Heartbeat:  time.Duration(v.GetInt64(configKeyHeartbeat)) * time.Second,
		HTTPAddr:   v.GetString(configKeyHTTP),
		SerialPort: v.GetString(configKeySerial),
		Baud:       v.GetInt(configKeyBaud),
	}

	var raw []rawButton
	if err := v.UnmarshalKey(configKeyButtons, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configKeyButtons, err)
	}
	for i, rb := range raw {
		b, err := rb.toButton()
		if err != nil {
			return nil, fmt.Errorf("button %d: %w", i, err)
		}
		cfg.Buttons = append(cfg.Buttons, b)
	}
	if len(cfg.Buttons) == 0 {
		cfg.Buttons = []Button{DefaultButton(DefaultPin)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (rb rawButton) toButton() (Button, error) {
	if rb.Pin == nil {
		return Button{}, errors.New("pin is required")
	}
	b := DefaultButton(*rb.Pin)
	if rb.Name != "" {
		b.Name = rb.Name
	}
	if rb.SingleClickMs != nil {
		b.Timing.SingleClickDelay = time.Duration(*rb.SingleClickMs) * time.Millisecond
	}
	if rb.LongClickMs != nil {
		b.Timing.LongClickDelay = time.Duration(*rb.LongClickMs) * time.Millisecond
	}
	if rb.DebounceMs != nil {
		b.Timing.DebounceDelay = time.Duration(*rb.DebounceMs) * time.Millisecond
	}
	return b, nil
}

// Validate checks the daemon settings and that button names and pins are unique.
func (c *Config) Validate() error {
	if c.Poll <= 0 {
		return errors.New("config: poll interval must be positive")
	}
	if len(c.Buttons) == 0 {
		return errors.New("config: no buttons configured")
	}

	names := make(map[string]bool)
	pins := make(map[int]bool)
	for _, b := range c.Buttons {
		if b.Name == "" || strings.ContainsAny(b.Name, "/+# ") {
			return fmt.Errorf("config: invalid button name %q", b.Name)
		}
		if b.Pin < 0 {
			return fmt.Errorf("config: button %s: invalid pin %d", b.Name, b.Pin)
		}
		if names[b.Name] {
			return fmt.Errorf("config: duplicate button name %q", b.Name)
		}
		if pins[b.Pin] {
			return fmt.Errorf("config: pin %d used by more than one button", b.Pin)
		}
		names[b.Name] = true
		pins[b.Pin] = true

		if err := b.Timing.Validate(); err != nil {
			return fmt.Errorf("config: button %s: %w", b.Name, err)
		}
	}
	return nil
}
