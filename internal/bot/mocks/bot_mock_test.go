package mocks

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

func TestMockBot_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("records text and markup", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()
		markup := &models.InlineKeyboardMarkup{}

		msg, err := m.SendMessage(context.Background(), &bot.SendMessageParams{
			ChatID:      int64(12345),
			Text:        "🧾 Mes notes",
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		})

		require.NoError(t, err)
		require.Equal(t, 1000, msg.ID)
		require.Equal(t, int64(12345), msg.Chat.ID)
		sent := m.LastSentMessage()
		require.Equal(t, SentMessage{
			ChatID:      12345,
			MessageID:   1000,
			Text:        "🧾 Mes notes",
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: markup,
		}, *sent)
	})

	t.Run("ids increase", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()

		first, err := m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: 1, Text: "a"})
		require.NoError(t, err)
		second, err := m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: 1, Text: "b"})
		require.NoError(t, err)

		require.Equal(t, first.ID+1, second.ID)
		require.Equal(t, int64(1), m.LastSentMessage().ChatID)
	})

	t.Run("injected failure records nothing", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()
		m.FailOn(MethodSendMessage, errors.New("send failed"))

		_, err := m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: int64(1), Text: "a"})

		require.EqualError(t, err, "send failed")
		require.Zero(t, m.SentMessageCount())
		require.Nil(t, m.LastSentMessage())

		m.FailOn(MethodSendMessage, nil)
		_, err = m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: int64(1), Text: "a"})
		require.NoError(t, err)
	})
}

func TestMockBot_EditMessageText(t *testing.T) {
	t.Parallel()

	m := NewMockBot()
	msg, err := m.EditMessageText(context.Background(), &bot.EditMessageTextParams{
		ChatID:    int64(7),
		MessageID: 42,
		Text:      "✅ Justificatif accepté.",
	})

	require.NoError(t, err)
	require.Equal(t, 42, msg.ID)
	require.Len(t, m.EditedMessages, 1)
	require.Equal(t, 42, m.LastEditedMessage().MessageID)
	require.Zero(t, m.SentMessageCount())
}

func TestMockBot_AnswerCallbackQuery(t *testing.T) {
	t.Parallel()

	m := NewMockBot()
	ok, err := m.AnswerCallbackQuery(context.Background(), &bot.AnswerCallbackQueryParams{CallbackQueryID: "cb-1"})

	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []AnsweredCallback{{CallbackQueryID: "cb-1"}}, m.AnsweredCallbacks)
}

func TestMockBot_Files(t *testing.T) {
	t.Parallel()

	t.Run("default answers derive from the file id", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()

		f, err := m.GetFile(context.Background(), &bot.GetFileParams{FileID: "abc"})

		require.NoError(t, err)
		require.Equal(t, "abc", f.FileID)
		require.Equal(t, "https://api.telegram.org/file/bottest/documents/abc", m.FileDownloadLink(f))
	})

	t.Run("overrides", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()
		m.FileToReturn = &models.File{FileID: "x", FileSize: 99}
		m.FileDownloadLinkToReturn = "http://127.0.0.1/x"

		f, err := m.GetFile(context.Background(), &bot.GetFileParams{FileID: "abc"})

		require.NoError(t, err)
		require.Equal(t, int64(99), f.FileSize)
		require.Equal(t, "http://127.0.0.1/x", m.FileDownloadLink(f))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()
		m.FailOn(MethodGetFile, errors.New("gone"))

		_, err := m.GetFile(context.Background(), &bot.GetFileParams{FileID: "abc"})

		require.EqualError(t, err, "gone")
	})
}

func TestMockBot_Uploads(t *testing.T) {
	t.Parallel()

	t.Run("document keeps name and bytes", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()

		msg, err := m.SendDocument(context.Background(), &bot.SendDocumentParams{
			ChatID:   int64(5),
			Document: &models.InputFileUpload{Filename: "notes.csv", Data: bytes.NewReader([]byte("ID,Date\n"))},
			Caption:  "Export",
		})

		require.NoError(t, err)
		require.Equal(t, "notes.csv", msg.Document.FileName)
		require.Equal(t, 1, m.SentDocumentCount())
		doc := m.LastSentDocument()
		require.Equal(t, "ID,Date\n", string(doc.Data))
		require.Equal(t, "Export", doc.Caption)
		require.Equal(t, int64(5), doc.ChatID)
	})

	t.Run("photo records its size", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()

		_, err := m.SendPhoto(context.Background(), &bot.SendPhotoParams{
			ChatID: int64(5),
			Photo:  &models.InputFileUpload{Filename: "preview.jpg", Data: bytes.NewReader(make([]byte, 64))},
		})

		require.NoError(t, err)
		require.Equal(t, 1, m.SentPhotoCount())
		require.Equal(t, 64, m.SentPhotos[0].Size())
	})

	t.Run("failures", func(t *testing.T) {
		t.Parallel()
		m := NewMockBot()
		m.FailOn(MethodSendDocument, errors.New("too big"))
		m.FailOn(MethodSendPhoto, errors.New("bad photo"))

		_, err := m.SendDocument(context.Background(), &bot.SendDocumentParams{ChatID: int64(5)})
		require.EqualError(t, err, "too big")
		_, err = m.SendPhoto(context.Background(), &bot.SendPhotoParams{ChatID: int64(5)})
		require.EqualError(t, err, "bad photo")
		require.Zero(t, m.SentDocumentCount())
		require.Zero(t, m.SentPhotoCount())
	})
}

func TestMockBot_MessagesTo(t *testing.T) {
	t.Parallel()

	m := NewMockBot()
	for _, p := range []struct {
		chat int64
		text string
	}{{1, "a"}, {2, "b"}, {1, "c"}} {
		_, err := m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: p.chat, Text: p.text})
		require.NoError(t, err)
	}

	require.Equal(t, []string{"a", "c"}, m.MessagesTo(1))
	require.Nil(t, m.MessagesTo(3))
}

func TestMockBot_Reset(t *testing.T) {
	t.Parallel()

	m := NewMockBot()
	m.FailOn(MethodEditMessageText, errors.New("boom"))
	_, _ = m.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: int64(1), Text: "a"})
	_, _ = m.AnswerCallbackQuery(context.Background(), &bot.AnswerCallbackQueryParams{CallbackQueryID: "cb"})

	m.Reset()

	require.Zero(t, m.SentMessageCount())
	require.Empty(t, m.AnsweredCallbacks)
	_, err := m.EditMessageText(context.Background(), &bot.EditMessageTextParams{ChatID: int64(1), MessageID: 1})
	require.NoError(t, err)
}

func TestChatIDOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(9), chatIDOf(int64(9)))
	require.Equal(t, int64(9), chatIDOf(9))
	require.Zero(t, chatIDOf("@billed"))
}
