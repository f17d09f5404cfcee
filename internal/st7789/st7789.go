// Package st7789 drives an ST7789V TFT panel over SPI.
//
// The controller is written to in 16-bit RGB565 mode. Only the handful of
// commands needed for full-frame drawing and power control are implemented.
package st7789

import (
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ST7789V command set subset.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// colmod565 selects 16-bit/pixel interface color format.
const colmod565 = 0x55

// Opts holds the panel geometry and orientation.
type Opts struct {
	W, H int
	// Inverted enables display color inversion; some panels ship with
	// inverted polarity.
	Inverted bool
}

// DefaultOpts matches a 240x320 portrait panel.
var DefaultOpts = Opts{W: 240, H: 320}

// Dev is an open handle to the panel.
type Dev struct {
	c     conn.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	bl    gpio.PinOut
	w, h  int
	buf   []byte
	maxTx int
}

// New connects to the panel on p and runs the initialization sequence.
// dc is required; rst and bl may be nil when those lines are not wired.
func New(p spi.Port, dc, rst, bl gpio.PinOut, o *Opts) (*Dev, error) {
	if o == nil {
		o = &DefaultOpts
	}
	c, err := p.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: connect: %w", err)
	}
	d := &Dev{
		c:     c,
		dc:    dc,
		rst:   rst,
		bl:    bl,
		w:     o.W,
		h:     o.H,
		buf:   make([]byte, o.W*o.H*2),
		maxTx: 4096,
	}
	if l, ok := c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 {
			d.maxTx = m
		}
	}
	if err := d.init(o.Inverted); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init(inverted bool) error {
	if d.rst != nil {
		// Hardware reset pulse.
		for _, s := range []struct {
			l gpio.Level
			t time.Duration
		}{{gpio.High, 10 * time.Millisecond}, {gpio.Low, 20 * time.Millisecond}, {gpio.High, 120 * time.Millisecond}} {
			if err := d.rst.Out(s.l); err != nil {
				return fmt.Errorf("st7789: reset: %w", err)
			}
			time.Sleep(s.t)
		}
	}
	if err := d.command(cmdSWRESET); err != nil {
		return err
	}
	time.Sleep(150 * time.Millisecond)
	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	if err := d.command(cmdCOLMOD, colmod565); err != nil {
		return err
	}
	if err := d.command(cmdMADCTL, 0x00); err != nil {
		return err
	}
	inv := byte(cmdINVOFF)
	if inverted {
		inv = cmdINVON
	}
	if err := d.command(inv); err != nil {
		return err
	}
	if err := d.command(cmdNORON); err != nil {
		return err
	}
	return d.command(cmdDISPON)
}

// Bounds returns the panel dimensions.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

// Draw transfers img as a full frame. The image must already be panel sized;
// pixels outside the panel are ignored, missing pixels render black.
func (d *Dev) Draw(img image.Image) error {
	d.fill(img)
	if err := d.window(0, 0, d.w-1, d.h-1); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	return d.data(d.buf)
}

// Power toggles the panel between normal operation and sleep.
func (d *Dev) Power(on bool) error {
	if on {
		if err := d.command(cmdSLPOUT); err != nil {
			return err
		}
		time.Sleep(120 * time.Millisecond)
		return d.command(cmdDISPON)
	}
	if err := d.command(cmdDISPOFF); err != nil {
		return err
	}
	return d.command(cmdSLPIN)
}

// Backlight switches the backlight line. No-op when the line is not wired.
func (d *Dev) Backlight(on bool) error {
	if d.bl == nil {
		return nil
	}
	if err := d.bl.Out(gpio.Level(on)); err != nil {
		return fmt.Errorf("st7789: backlight: %w", err)
	}
	return nil
}

// Halt blanks the panel and puts the controller to sleep.
func (d *Dev) Halt() error {
	if err := d.Backlight(false); err != nil {
		return err
	}
	return d.Power(false)
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d, %s}", d.w, d.h, d.c)
}

// window sets the active column and row address ranges.
func (d *Dev) window(x0, y0, x1, y1 int) error {
	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	return d.command(cmdRASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1))
}

// fill converts img into the RGB565 framebuffer.
func (d *Dev) fill(img image.Image) {
	for i := range d.buf {
		d.buf[i] = 0
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > d.w {
		w = d.w
	}
	if h > d.h {
		h = d.h
	}
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[(b.Min.Y+y-rgba.Rect.Min.Y)*rgba.Stride+(b.Min.X-rgba.Rect.Min.X)*4:]
			for x := 0; x < w; x++ {
				r, g, bc := row[x*4], row[x*4+1], row[x*4+2]
				p := uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(bc)>>3
				o := (y*d.w + x) * 2
				d.buf[o] = byte(p >> 8)
				d.buf[o+1] = byte(p)
			}
		}
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bc, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			p := uint16(r>>8&0xF8)<<8 | uint16(g>>8&0xFC)<<3 | uint16(bc>>8)>>3
			o := (y*d.w + x) * 2
			d.buf[o] = byte(p >> 8)
			d.buf[o+1] = byte(p)
		}
	}
}

func (d *Dev) command(cmd byte, args ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("st7789: dc: %w", err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("st7789: command %#02x: %w", cmd, err)
	}
	if len(args) == 0 {
		return nil
	}
	return d.data(args)
}

func (d *Dev) data(b []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("st7789: dc: %w", err)
	}
	for len(b) > 0 {
		n := len(b)
		if n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(b[:n], nil); err != nil {
			return fmt.Errorf("st7789: data: %w", err)
		}
		b = b[n:]
	}
	return nil
}
