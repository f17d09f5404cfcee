package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/itpcc/qr-display-telegram-bot/internal/bot"
	"github.com/itpcc/qr-display-telegram-bot/internal/config"
	"github.com/itpcc/qr-display-telegram-bot/internal/display"
	"github.com/itpcc/qr-display-telegram-bot/internal/handler"
	"github.com/itpcc/qr-display-telegram-bot/internal/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Init()

	if err := run(); err != nil {
		logging.Log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	screen, err := display.Open(cfg)
	if err != nil {
		return err
	}
	worker := display.NewWorker(screen, cfg.HoldFor)
	defer worker.Close()

	if err := worker.Clear(); err != nil {
		logging.Log.Warn().Err(err).Msg("initial clear failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.Run(ctx, cfg, handler.New(worker))
}
