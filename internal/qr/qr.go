// Package qr encodes text into QR code rasters, decodes rasters back into
// text and composes frames sized to the display panel.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrgen "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// Panel pixel dimensions of the attached display.
const (
	PanelW = 240
	PanelH = 320
)

// codeSize is the square edge a rendered code occupies on the panel.
const codeSize = 240

var (
	// ErrNotFound reports that an image contains no decodable QR code.
	ErrNotFound = errors.New("no QR code found")
	// ErrCapacity reports that text does not fit in a single QR code.
	ErrCapacity = errors.New("text exceeds QR code capacity")
)

// Encode renders text as a QR code at error correction level L.
func Encode(text string) (image.Image, error) {
	code, err := qrgen.New(text, qrgen.Low)
	if err != nil {
		// The encoder reports "content too long to encode" when no
		// symbol version fits the payload.
		if strings.Contains(err.Error(), "too long") {
			return nil, fmt.Errorf("%w: %v", ErrCapacity, err)
		}
		return nil, fmt.Errorf("encode: %w", err)
	}
	return code.Image(codeSize), nil
}

// Decode scans img for a QR code and returns its text payload. Multi-code
// images yield the first detected code.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return res.GetText(), nil
}

// Compose places a rendered code on a white panel-sized canvas, scaled to
// codeSize and vertically centered.
func Compose(code image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, PanelW, PanelH))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	top := (PanelH - codeSize) / 2
	target := image.Rect(0, top, codeSize, top+codeSize)
	// Nearest neighbor keeps module edges sharp.
	xdraw.NearestNeighbor.Scale(canvas, target, code, code.Bounds(), xdraw.Src, nil)
	return canvas
}

// PNG serializes an image for the chat photo reply.
func PNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
