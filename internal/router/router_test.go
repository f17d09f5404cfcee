package router

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestClassifyText(t *testing.T) {
	upd := &models.Update{Message: &models.Message{ID: 7, Text: "hello", Chat: models.Chat{ID: 42}}}
	in := Classify(upd)
	if in.Kind != KindText {
		t.Fatalf("Kind = %v, want KindText", in.Kind)
	}
	if in.Text != "hello" || in.ChatID != 42 || in.MessageID != 7 {
		t.Fatalf("unexpected Inbound: %+v", in)
	}
}

func TestClassifyPhotoPicksLargestVariant(t *testing.T) {
	upd := &models.Update{Message: &models.Message{
		Chat:  models.Chat{ID: 1},
		Photo: []models.PhotoSize{{FileID: "small"}, {FileID: "medium"}, {FileID: "large"}},
	}}
	in := Classify(upd)
	if in.Kind != KindPhoto {
		t.Fatalf("Kind = %v, want KindPhoto", in.Kind)
	}
	if in.PhotoFileID != "large" {
		t.Fatalf("PhotoFileID = %q, want %q", in.PhotoFileID, "large")
	}
}

func TestClassifyPhotoBeatsCaption(t *testing.T) {
	upd := &models.Update{Message: &models.Message{
		Chat:    models.Chat{ID: 1},
		Photo:   []models.PhotoSize{{FileID: "f"}},
		Caption: "caption text",
	}}
	if in := Classify(upd); in.Kind != KindPhoto {
		t.Fatalf("Kind = %v, want KindPhoto", in.Kind)
	}
}

func TestClassifyTotality(t *testing.T) {
	cases := map[string]*models.Update{
		"nil update":      nil,
		"no message":      {},
		"callback only":   {CallbackQuery: &models.CallbackQuery{}},
		"empty message":   {Message: &models.Message{Chat: models.Chat{ID: 1}}},
		"sticker message": {Message: &models.Message{Chat: models.Chat{ID: 1}, Sticker: &models.Sticker{}}},
	}
	for name, upd := range cases {
		in := Classify(upd)
		if in.Kind != KindUnsupported {
			t.Fatalf("%s: Kind = %v, want KindUnsupported", name, in.Kind)
		}
	}
}

func TestClassifyNoMessageHasNoChat(t *testing.T) {
	if in := Classify(&models.Update{}); in.ChatID != 0 {
		t.Fatalf("ChatID = %d, want 0", in.ChatID)
	}
}
