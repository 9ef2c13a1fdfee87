package mocks

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateBuilder_Message(t *testing.T) {
	t.Parallel()

	u := NewUpdateBuilder().
		WithMessage(10, 20, "/bills").
		WithFrom(20, "jdoe", "Jean", "Dupont").
		Build()

	require.Equal(t, int64(10), u.Message.Chat.ID)
	require.Equal(t, "/bills", u.Message.Text)
	require.Equal(t, "Jean", u.Message.From.FirstName)
	require.Nil(t, u.CallbackQuery)
}

func TestUpdateBuilder_Callback(t *testing.T) {
	t.Parallel()

	u := NewUpdateBuilder().
		WithCallbackQuery("cb-9", 10, 20, 77, "receipt_47qAXb6fIm2zOKkLzMro").
		WithFrom(21, "", "Paul", "").
		Build()

	require.Equal(t, "cb-9", u.CallbackQuery.ID)
	require.Equal(t, int64(21), u.CallbackQuery.From.ID)
	require.Equal(t, 77, u.CallbackQuery.Message.Message.ID)
	require.Equal(t, int64(10), u.CallbackQuery.Message.Message.Chat.ID)
	require.Nil(t, u.Message)
}

func TestPhotoUpdate_LargestLast(t *testing.T) {
	t.Parallel()

	u := PhotoUpdate(10, 20, "p1")

	require.Len(t, u.Message.Photo, 2)
	largest := u.Message.Photo[len(u.Message.Photo)-1]
	require.Equal(t, "p1", largest.FileID)
	require.Equal(t, "u-p1", largest.FileUniqueID)
	require.Greater(t, largest.Width, u.Message.Photo[0].Width)
}

func TestDocumentUpdate(t *testing.T) {
	t.Parallel()

	u := DocumentUpdate(10, 20, "f1", "ticket.png", "image/png")

	require.Equal(t, int64(20), u.Message.From.ID)
	require.Equal(t, "f1", u.Message.Document.FileID)
	require.Equal(t, "ticket.png", u.Message.Document.FileName)
	require.Equal(t, "image/png", u.Message.Document.MimeType)
	require.Empty(t, u.Message.Text)
}

func TestWithDocument_CreatesMessage(t *testing.T) {
	t.Parallel()

	u := NewUpdateBuilder().WithDocument("f1", "a.jpg", "image/jpeg").Build()

	require.NotNil(t, u.Message)
	require.Zero(t, u.Message.Chat.ID)
}

func TestCommandAndCallbackHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/login a@b.fr", CommandUpdate(1, 2, "/login a@b.fr").Message.Text)
	require.Equal(t, "newbill", CallbackQueryUpdate(1, 2, 3, "newbill").CallbackQuery.Data)
	require.Equal(t, "bonjour", MessageUpdate(1, 2, "bonjour").Message.Text)
}
