// Package mocks provides a recording Telegram client and update builders for bot handler tests.
package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramAPI is the subset of the Telegram client the handlers call.
// It lives here so the bot package and its tests share it without an import cycle.
type TelegramAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// Method names accepted by FailOn.
const (
	MethodSendMessage     = "SendMessage"
	MethodEditMessageText = "EditMessageText"
	MethodGetFile         = "GetFile"
	MethodSendDocument    = "SendDocument"
	MethodSendPhoto       = "SendPhoto"
)

// SentMessage is a text message as sent or edited by a handler.
type SentMessage struct {
	ChatID      int64
	MessageID   int
	Text        string
	ParseMode   models.ParseMode
	ReplyMarkup models.ReplyMarkup
}

// SentFile is an uploaded document or photo.
type SentFile struct {
	ChatID   int64
	Filename string
	Data     []byte
	Caption  string
}

// Size is the number of bytes uploaded.
func (f SentFile) Size() int { return len(f.Data) }

// AnsweredCallback is a callback query acknowledgement.
type AnsweredCallback struct {
	CallbackQueryID string
	Text            string
}

var _ TelegramAPI = (*MockBot)(nil)

// MockBot records every call and answers with canned values.
type MockBot struct {
	mu     sync.RWMutex
	nextID int
	fail   map[string]error

	SentMessages      []SentMessage
	EditedMessages    []SentMessage
	AnsweredCallbacks []AnsweredCallback
	SentDocuments     []SentFile
	SentPhotos        []SentFile

	// FileToReturn overrides the GetFile answer.
	FileToReturn *models.File
	// FileDownloadLinkToReturn overrides the FileDownloadLink answer.
	FileDownloadLinkToReturn string
}

// NewMockBot returns an empty recorder. Message ids start at 1000.
func NewMockBot() *MockBot {
	return &MockBot{nextID: 1000, fail: make(map[string]error)}
}

// FailOn makes every later call to method return err. A nil err clears it.
func (m *MockBot) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, method)
		return
	}
	m.fail[method] = err
}

// takeID must be called with mu held.
func (m *MockBot) takeID() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *MockBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[MethodSendMessage]; err != nil {
		return nil, err
	}

	msg := SentMessage{
		ChatID:      chatIDOf(params.ChatID),
		MessageID:   m.takeID(),
		Text:        params.Text,
		ParseMode:   params.ParseMode,
		ReplyMarkup: params.ReplyMarkup,
	}
	m.SentMessages = append(m.SentMessages, msg)
	return &models.Message{ID: msg.MessageID, Chat: models.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (m *MockBot) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[MethodEditMessageText]; err != nil {
		return nil, err
	}

	msg := SentMessage{
		ChatID:      chatIDOf(params.ChatID),
		MessageID:   params.MessageID,
		Text:        params.Text,
		ParseMode:   params.ParseMode,
		ReplyMarkup: params.ReplyMarkup,
	}
	m.EditedMessages = append(m.EditedMessages, msg)
	return &models.Message{ID: msg.MessageID, Chat: models.Chat{ID: msg.ChatID}, Text: msg.Text}, nil
}

func (m *MockBot) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnsweredCallbacks = append(m.AnsweredCallbacks, AnsweredCallback{
		CallbackQueryID: params.CallbackQueryID,
		Text:            params.Text,
	})
	return true, nil
}

func (m *MockBot) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fail[MethodGetFile]; err != nil {
		return nil, err
	}
	if m.FileToReturn != nil {
		return m.FileToReturn, nil
	}
	return &models.File{FileID: params.FileID, FilePath: "documents/" + params.FileID}, nil
}

func (m *MockBot) FileDownloadLink(f *models.File) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FileDownloadLinkToReturn != "" {
		return m.FileDownloadLinkToReturn
	}
	return "https://api.telegram.org/file/bottest/" + f.FilePath
}

func (m *MockBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[MethodSendDocument]; err != nil {
		return nil, err
	}

	sent := uploaded(params.ChatID, params.Document, params.Caption)
	m.SentDocuments = append(m.SentDocuments, sent)
	return &models.Message{
		ID:       m.takeID(),
		Chat:     models.Chat{ID: sent.ChatID},
		Caption:  sent.Caption,
		Document: &models.Document{FileID: "document-" + sent.Filename, FileName: sent.Filename},
	}, nil
}

func (m *MockBot) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[MethodSendPhoto]; err != nil {
		return nil, err
	}

	sent := uploaded(params.ChatID, params.Photo, params.Caption)
	m.SentPhotos = append(m.SentPhotos, sent)
	return &models.Message{ID: m.takeID(), Chat: models.Chat{ID: sent.ChatID}, Caption: sent.Caption}, nil
}

// Reset forgets recorded calls and injected failures.
func (m *MockBot) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = nil
	m.EditedMessages = nil
	m.AnsweredCallbacks = nil
	m.SentDocuments = nil
	m.SentPhotos = nil
	clear(m.fail)
}

// LastSentMessage returns nil when nothing was sent.
func (m *MockBot) LastSentMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentMessages)
}

func (m *MockBot) LastEditedMessage() *SentMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.EditedMessages)
}

func (m *MockBot) LastSentDocument() *SentFile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return last(m.SentDocuments)
}

func (m *MockBot) SentMessageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentMessages)
}

func (m *MockBot) SentDocumentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentDocuments)
}

func (m *MockBot) SentPhotoCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SentPhotos)
}

// MessagesTo returns the texts sent to chatID, oldest first.
func (m *MockBot) MessagesTo(chatID int64) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var texts []string
	for _, msg := range m.SentMessages {
		if msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func last[T any](items []T) *T {
	if len(items) == 0 {
		return nil
	}
	return &items[len(items)-1]
}

func uploaded(chatID any, file models.InputFile, caption string) SentFile {
	sent := SentFile{ChatID: chatIDOf(chatID), Caption: caption}
	if upload, ok := file.(*models.InputFileUpload); ok {
		sent.Filename = upload.Filename
		sent.Data, _ = io.ReadAll(upload.Data)
	}
	return sent
}

// chatIDOf maps numeric chat ids to int64; usernames map to 0.
func chatIDOf(chatID any) int64 {
	switch v := chatID.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
