// Package handler implements the per-update reply pipeline: classify the
// update, run the QR codec, push the frame to the display and answer in the
// chat. Every per-update failure becomes a chat reply; nothing here is fatal.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	tg "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/itpcc/qr-display-telegram-bot/internal/logging"
	"github.com/itpcc/qr-display-telegram-bot/internal/qr"
	"github.com/itpcc/qr-display-telegram-bot/internal/router"
)

const usageHint = "Send me text to render it as a QR code, or a photo of a QR code to decode it."

// TelegramAPI is the slice of the bot client the pipeline needs. *tg.Bot
// satisfies it.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *tg.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *tg.SendPhotoParams) (*models.Message, error)
	GetFile(ctx context.Context, params *tg.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// FrameSink receives panel-sized frames. *display.Worker satisfies it.
type FrameSink interface {
	Show(image.Image) error
}

// Handler processes updates against one display.
type Handler struct {
	sink  FrameSink
	httpc *http.Client
}

// New returns a Handler pushing frames to sink.
func New(sink FrameSink) *Handler {
	return &Handler{
		sink:  sink,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleUpdate processes a Telegram update.
func (h *Handler) HandleUpdate(ctx context.Context, api TelegramAPI, upd *models.Update) {
	ctx = logging.Context(ctx)

	in := router.Classify(upd)
	if in.ChatID == 0 {
		// Not a message; nothing to answer.
		return
	}
	ctx = logging.WithChat(ctx, in.ChatID)
	log := logging.Ctx(ctx)

	switch in.Kind {
	case router.KindText:
		log.Info().Str("event", "telegram_request").Str("kind", "text").Str("snippet", logging.Snippet(in.Text, 30)).Msg("incoming message")
		h.handleText(ctx, api, in)
	case router.KindPhoto:
		log.Info().Str("event", "telegram_request").Str("kind", "photo").Str("file_id", in.PhotoFileID).Msg("incoming message")
		h.handlePhoto(ctx, api, in)
	default:
		log.Info().Str("event", "telegram_request").Str("kind", "unsupported").Msg("incoming message")
		h.reply(ctx, api, in, usageHint)
	}
}

// handleText renders the message text as a QR code, shows it on the panel
// and answers with the rendered image.
func (h *Handler) handleText(ctx context.Context, api TelegramAPI, in router.Inbound) {
	log := logging.Ctx(ctx)

	code, err := qr.Encode(in.Text)
	if err != nil {
		log.Warn().Err(err).Str("event", "qr_encode").Msg("encode failed")
		if errors.Is(err, qr.ErrCapacity) {
			h.reply(ctx, api, in, "Text is too long to fit in a QR code.")
		} else {
			h.reply(ctx, api, in, "Failed to generate QR code: "+err.Error())
		}
		return
	}
	h.present(ctx, api, in, code, in.Text)
}

// handlePhoto downloads the photo, decodes the QR code in it and shows a
// clean rendering of the payload on the panel.
func (h *Handler) handlePhoto(ctx context.Context, api TelegramAPI, in router.Inbound) {
	log := logging.Ctx(ctx)

	file, err := api.GetFile(ctx, &tg.GetFileParams{FileID: in.PhotoFileID})
	if err != nil {
		log.Error().Err(err).Str("event", "photo_fetch").Msg("get file failed")
		h.reply(ctx, api, in, "Failed to fetch the photo: "+err.Error())
		return
	}
	img, err := h.download(ctx, api.FileDownloadLink(file))
	if err != nil {
		log.Error().Err(err).Str("event", "photo_fetch").Msg("download failed")
		h.reply(ctx, api, in, "Failed to download the photo: "+err.Error())
		return
	}

	text, err := qr.Decode(img)
	if err != nil {
		log.Warn().Err(err).Str("event", "qr_decode").Msg("no code in photo")
		h.reply(ctx, api, in, "No QR code found")
		return
	}
	log.Info().Str("event", "qr_decode").Str("snippet", logging.Snippet(text, 30)).Msg("payload retrieved")

	// Re-render the payload instead of cropping the photo, so the panel
	// always gets a sharp code.
	code, err := qr.Encode(text)
	if err != nil {
		h.reply(ctx, api, in, "Failed to render the decoded payload: "+err.Error())
		return
	}
	h.present(ctx, api, in, code, text)
}

// present pushes the composed frame to the display and replies with the
// rendering, the payload as its caption.
func (h *Handler) present(ctx context.Context, api TelegramAPI, in router.Inbound, code image.Image, caption string) {
	log := logging.Ctx(ctx)

	frame := qr.Compose(code)
	if err := h.sink.Show(frame); err != nil {
		log.Error().Err(err).Str("event", "display_show").Msg("display failed")
		h.reply(ctx, api, in, "Display error: "+err.Error())
		return
	}
	log.Info().Str("event", "display_show").Msg("frame shown")

	png, err := qr.PNG(frame)
	if err != nil {
		h.reply(ctx, api, in, "Displayed: "+caption)
		return
	}
	_, err = api.SendPhoto(ctx, &tg.SendPhotoParams{
		ChatID:          in.ChatID,
		Photo:           &models.InputFileUpload{Filename: "qr.png", Data: bytes.NewReader(png)},
		Caption:         caption,
		ReplyParameters: &models.ReplyParameters{MessageID: in.MessageID},
	})
	if err != nil {
		log.Error().Err(err).Str("event", "telegram_reply").Msg("send photo failed")
		h.reply(ctx, api, in, "Displayed: "+caption)
		return
	}
	log.Info().Str("event", "telegram_reply").Str("snippet", logging.Snippet(caption, 30)).Msg("photo reply sent")
}

func (h *Handler) reply(ctx context.Context, api TelegramAPI, in router.Inbound, text string) {
	_, err := api.SendMessage(ctx, &tg.SendMessageParams{
		ChatID:          in.ChatID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: in.MessageID},
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("event", "telegram_reply").Msg("send message failed")
	}
}

// download fetches and decodes the image behind a Telegram file link.
func (h *Handler) download(ctx context.Context, link string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: %s", resp.Status)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
