// Package router classifies inbound Telegram updates.
package router

import "github.com/go-telegram/bot/models"

// Kind identifies what an update carries.
type Kind int

const (
	// KindUnsupported covers everything the bot cannot act on.
	KindUnsupported Kind = iota
	// KindText is a plain text message.
	KindText
	// KindPhoto is a message with at least one photo attachment.
	KindPhoto
)

// Inbound is the classified form of an update. Exactly one of Text or
// PhotoFileID is meaningful, selected by Kind.
type Inbound struct {
	Kind Kind

	// Text is the message body for KindText.
	Text string
	// PhotoFileID references the largest size variant for KindPhoto.
	PhotoFileID string

	// ChatID and MessageID locate the message to reply to. ChatID is zero
	// when the update carries no message at all.
	ChatID    int64
	MessageID int
}

// Classify maps any update to exactly one Inbound. A photo wins over its
// caption; a message with neither photo nor text is unsupported.
func Classify(upd *models.Update) Inbound {
	if upd == nil || upd.Message == nil {
		return Inbound{Kind: KindUnsupported}
	}
	msg := upd.Message
	in := Inbound{
		Kind:      KindUnsupported,
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	}
	if len(msg.Photo) > 0 {
		in.Kind = KindPhoto
		// Telegram orders size variants smallest first.
		in.PhotoFileID = msg.Photo[len(msg.Photo)-1].FileID
		return in
	}
	if msg.Text != "" {
		in.Kind = KindText
		in.Text = msg.Text
	}
	return in
}
