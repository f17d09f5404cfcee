package display

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/itpcc/qr-display-telegram-bot/internal/config"
	"github.com/itpcc/qr-display-telegram-bot/internal/st7789"
)

// hwScreen ties the panel driver to the SPI port so both are released
// together on Halt.
type hwScreen struct {
	*st7789.Dev
	port spi.PortCloser
}

func (s *hwScreen) Halt() error {
	err := s.Dev.Halt()
	if cerr := s.port.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open initializes the host drivers and attaches the configured panel.
// With cfg.DisplayDisabled it returns a no-op screen instead.
func Open(cfg *config.Config) (Screen, error) {
	if cfg.DisplayDisabled {
		return NopScreen{}, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", cfg.SPIPort, err)
	}
	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		port.Close()
		return nil, fmt.Errorf("unknown DC pin %q", cfg.DCPin)
	}
	var rst, bl gpio.PinOut
	if cfg.ResetPin != "" {
		if rst = gpioreg.ByName(cfg.ResetPin); rst == nil {
			port.Close()
			return nil, fmt.Errorf("unknown reset pin %q", cfg.ResetPin)
		}
	}
	if cfg.BacklightPin != "" {
		if bl = gpioreg.ByName(cfg.BacklightPin); bl == nil {
			port.Close()
			return nil, fmt.Errorf("unknown backlight pin %q", cfg.BacklightPin)
		}
	}
	dev, err := st7789.New(port, dc, rst, bl, &st7789.DefaultOpts)
	if err != nil {
		port.Close()
		return nil, err
	}
	return &hwScreen{Dev: dev, port: port}, nil
}
