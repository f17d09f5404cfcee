package qr

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, text := range []string{"hello", "https://example.com/some/path?x=1"} {
		img, err := Encode(text)
		if err != nil {
			t.Fatalf("Encode(%q): %v", text, err)
		}
		got, err := Decode(img)
		if err != nil {
			t.Fatalf("Decode after Encode(%q): %v", text, err)
		}
		if got != text {
			t.Fatalf("round trip = %q, want %q", got, text)
		}
	}
}

func TestDecodeComposedFrame(t *testing.T) {
	img, err := Encode("hello")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(Compose(img))
	if err != nil {
		t.Fatalf("Decode composed frame: %v", err)
	}
	if got != "hello" {
		t.Fatalf("Decode composed frame = %q, want %q", got, "hello")
	}
}

func TestDecodeNoCode(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 100, 100))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)
	if _, err := Decode(blank); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Decode(blank) err = %v, want ErrNotFound", err)
	}
}

func TestEncodeCapacityExceeded(t *testing.T) {
	if _, err := Encode(strings.Repeat("a", 4000)); !errors.Is(err, ErrCapacity) {
		t.Fatalf("Encode(4000 bytes) err = %v, want ErrCapacity", err)
	}
}

func TestEncodeEmptyIsNotCapacity(t *testing.T) {
	_, err := Encode("")
	if err == nil {
		t.Fatal("Encode(\"\") should fail")
	}
	if errors.Is(err, ErrCapacity) {
		t.Fatalf("Encode(\"\") err = %v, should not be ErrCapacity", err)
	}
}

func TestComposeGeometry(t *testing.T) {
	code, err := Encode("hello")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	frame := Compose(code)
	if got, want := frame.Bounds(), image.Rect(0, 0, PanelW, PanelH); got != want {
		t.Fatalf("frame bounds = %v, want %v", got, want)
	}
	// The bands above and below the code stay white.
	for _, y := range []int{0, PanelH - 1} {
		if got := frame.RGBAAt(PanelW/2, y); got != (color.RGBA{255, 255, 255, 255}) {
			t.Fatalf("pixel at (%d,%d) = %v, want white", PanelW/2, y, got)
		}
	}
	// The code band contains at least one dark module.
	dark := false
	for x := 0; x < PanelW && !dark; x++ {
		for y := (PanelH - PanelW) / 2; y < (PanelH+PanelW)/2; y++ {
			if c := frame.RGBAAt(x, y); c.R < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Fatal("composed frame has no dark modules")
	}
}
