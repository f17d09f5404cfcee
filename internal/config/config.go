// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all process-wide settings. It is built once at startup and
// passed by reference; nothing mutates it afterwards.
type Config struct {
	// Token is the Telegram bot credential. Required.
	Token string

	// SPIPort names the SPI port of the panel. Empty selects the first
	// available port.
	SPIPort string
	// DCPin, ResetPin and BacklightPin name the GPIO pins wired to the
	// panel's data/command, reset and backlight lines.
	DCPin        string
	ResetPin     string
	BacklightPin string
	// DisplayDisabled replaces the physical panel with a no-op screen.
	DisplayDisabled bool

	// HoldFor is how long a frame stays on the panel before it blanks.
	HoldFor time.Duration
}

// Load reads the configuration from the environment. A missing bot token is
// an error; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Token:        os.Getenv("TELEGRAM_TOKEN"),
		SPIPort:      os.Getenv("DISPLAY_SPI_PORT"),
		DCPin:        envOr("DISPLAY_DC_PIN", "GPIO25"),
		ResetPin:     envOr("DISPLAY_RESET_PIN", "GPIO27"),
		BacklightPin: envOr("DISPLAY_BACKLIGHT_PIN", "GPIO18"),
		HoldFor:      10 * time.Second,
	}
	if cfg.Token == "" {
		return nil, errors.New("TELEGRAM_TOKEN env var is required")
	}
	if s := os.Getenv("DISPLAY_DISABLED"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPLAY_DISABLED %q", s)
		}
		cfg.DisplayDisabled = v
	}
	if s := os.Getenv("IMAGE_DISPLAY_SEC"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid IMAGE_DISPLAY_SEC %q", s)
		}
		cfg.HoldFor = time.Duration(n) * time.Second
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
