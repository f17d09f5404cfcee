// Package bot owns the Telegram long-poll lifecycle.
package bot

import (
	"context"
	"fmt"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/itpcc/qr-display-telegram-bot/internal/config"
	"github.com/itpcc/qr-display-telegram-bot/internal/handler"
	"github.com/itpcc/qr-display-telegram-bot/internal/logging"
)

// Run builds the Telegram client around h and long-polls until ctx is
// canceled. Per-update errors never surface here; h converts them to chat
// replies.
func Run(ctx context.Context, cfg *config.Config, h *handler.Handler) error {
	b, err := tg.New(cfg.Token, tg.WithDefaultHandler(func(ctx context.Context, b *tg.Bot, upd *models.Update) {
		h.HandleUpdate(ctx, b, upd)
	}))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	if me, err := b.GetMe(ctx); err == nil {
		logging.Log.Info().Str("event", "bot_start").Str("username", me.Username).Msg("bot started")
	} else {
		logging.Log.Warn().Err(err).Msg("getMe failed")
	}

	b.Start(ctx)
	logging.Log.Info().Str("event", "bot_stop").Msg("polling stopped")
	return nil
}
