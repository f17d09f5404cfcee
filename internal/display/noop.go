package display

import (
	"image"

	"github.com/itpcc/qr-display-telegram-bot/internal/logging"
	"github.com/itpcc/qr-display-telegram-bot/internal/qr"
)

// NopScreen is a Screen without hardware behind it, for running the bot on
// machines with no panel attached. Draws are logged and discarded.
type NopScreen struct{}

func (NopScreen) Draw(img image.Image) error {
	logging.Log.Debug().Str("event", "display_draw").Stringer("size", img.Bounds().Size()).Msg("noop screen draw")
	return nil
}

func (NopScreen) Power(on bool) error     { return nil }
func (NopScreen) Backlight(on bool) error { return nil }
func (NopScreen) Bounds() image.Rectangle { return image.Rect(0, 0, qr.PanelW, qr.PanelH) }
func (NopScreen) Halt() error             { return nil }
