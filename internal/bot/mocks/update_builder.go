package mocks

import (
	"github.com/go-telegram/bot/models"
)

// UpdateBuilder assembles a private-chat update step by step.
type UpdateBuilder struct {
	update models.Update
}

func NewUpdateBuilder() *UpdateBuilder {
	return &UpdateBuilder{}
}

func employee(userID int64) models.User {
	return models.User{ID: userID, FirstName: "Claire", LastName: "Martin", Username: "claire"}
}

func privateChat(chatID int64) models.Chat {
	return models.Chat{ID: chatID, Type: "private"}
}

// WithMessage sets a text message from userID.
func (b *UpdateBuilder) WithMessage(chatID, userID int64, text string) *UpdateBuilder {
	from := employee(userID)
	b.update.Message = &models.Message{ID: 1, Chat: privateChat(chatID), From: &from, Text: text}
	return b
}

// WithFrom replaces the sender of the message or callback already set.
func (b *UpdateBuilder) WithFrom(userID int64, username, firstName, lastName string) *UpdateBuilder {
	user := models.User{ID: userID, Username: username, FirstName: firstName, LastName: lastName}
	if b.update.Message != nil {
		b.update.Message.From = &user
	}
	if b.update.CallbackQuery != nil {
		b.update.CallbackQuery.From = user
	}
	return b
}

// WithCallbackQuery sets a button press on messageID.
func (b *UpdateBuilder) WithCallbackQuery(callbackID string, chatID, userID int64, messageID int, data string) *UpdateBuilder {
	b.update.CallbackQuery = &models.CallbackQuery{
		ID:   callbackID,
		From: employee(userID),
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: messageID, Chat: privateChat(chatID)},
		},
		Data: data,
	}
	return b
}

// WithPhoto attaches a thumbnail and a full size of the same photo, smallest first as Telegram does.
func (b *UpdateBuilder) WithPhoto(fileID string) *UpdateBuilder {
	b.ensureMessage()
	b.update.Message.Photo = []models.PhotoSize{
		{FileID: fileID + "-thumb", FileUniqueID: "thumb-" + fileID, Width: 320, Height: 240},
		{FileID: fileID, FileUniqueID: "u-" + fileID, Width: 1280, Height: 960},
	}
	return b
}

// WithDocument attaches a file as a document.
func (b *UpdateBuilder) WithDocument(fileID, fileName, mimeType string) *UpdateBuilder {
	b.ensureMessage()
	b.update.Message.Document = &models.Document{
		FileID:       fileID,
		FileUniqueID: "u-" + fileID,
		FileName:     fileName,
		MimeType:     mimeType,
	}
	return b
}

func (b *UpdateBuilder) ensureMessage() {
	if b.update.Message == nil {
		b.WithMessage(0, 0, "")
	}
}

// Build returns the assembled update.
func (b *UpdateBuilder) Build() *models.Update {
	update := b.update
	return &update
}

// MessageUpdate is a plain text message.
func MessageUpdate(chatID, userID int64, text string) *models.Update {
	return NewUpdateBuilder().WithMessage(chatID, userID, text).Build()
}

// CommandUpdate is a message starting with a slash command.
func CommandUpdate(chatID, userID int64, command string) *models.Update {
	return MessageUpdate(chatID, userID, command)
}

// CallbackQueryUpdate is an inline button press.
func CallbackQueryUpdate(chatID, userID int64, messageID int, data string) *models.Update {
	return NewUpdateBuilder().WithCallbackQuery("cb-1", chatID, userID, messageID, data).Build()
}

// PhotoUpdate is a receipt sent as a compressed photo.
func PhotoUpdate(chatID, userID int64, fileID string) *models.Update {
	return NewUpdateBuilder().WithMessage(chatID, userID, "").WithPhoto(fileID).Build()
}

// DocumentUpdate is a receipt sent as a file.
func DocumentUpdate(chatID, userID int64, fileID, fileName, mimeType string) *models.Update {
	return NewUpdateBuilder().WithMessage(chatID, userID, "").WithDocument(fileID, fileName, mimeType).Build()
}
