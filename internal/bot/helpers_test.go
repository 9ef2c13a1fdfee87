package bot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billed/internal/bot/mocks"
	"gitlab.com/yelinaung/billed/internal/config"
	"gitlab.com/yelinaung/billed/internal/gemini"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/repository"
)

const (
	testChatID int64 = 12345
	testUserID int64 = 67890
)

type fakeDirectory struct {
	mu      sync.Mutex
	emails  map[int64]string
	upserts int
	deletes int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{emails: make(map[int64]string)}
}

func (d *fakeDirectory) Upsert(_ context.Context, telegramID int64, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upserts++
	d.emails[telegramID] = email
	return nil
}

func (d *fakeDirectory) GetByTelegramID(_ context.Context, telegramID int64) (*models.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	email, ok := d.emails[telegramID]
	if !ok {
		return nil, repository.ErrEmployeeNotFound
	}
	return &models.Employee{TelegramID: telegramID, Email: email}, nil
}

func (d *fakeDirectory) Delete(_ context.Context, telegramID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deletes++
	delete(d.emails, telegramID)
	return nil
}

type fakeParser struct {
	receipt    *gemini.ReceiptData
	receiptErr error
	suggestion *gemini.TypeSuggestion
	suggestErr error

	parseCalls   int
	suggestCalls int
}

func (p *fakeParser) ParseReceipt(_ context.Context, _ []byte, _ string) (*gemini.ReceiptData, error) {
	p.parseCalls++
	if p.receiptErr != nil {
		return nil, p.receiptErr
	}
	if p.receipt == nil {
		return nil, gemini.ErrNoData
	}
	return p.receipt, nil
}

func (p *fakeParser) SuggestType(_ context.Context, _ string) (*gemini.TypeSuggestion, error) {
	p.suggestCalls++
	if p.suggestErr != nil {
		return nil, p.suggestErr
	}
	if p.suggestion == nil {
		return nil, gemini.ErrNoData
	}
	return p.suggestion, nil
}

func newTestBot(t *testing.T, deps Deps) *Bot {
	t.Helper()
	return newBot(&config.Config{TelegramBotToken: "test-token"}, deps)
}

// login opens a session for email and forgets the messages it produced.
func login(t *testing.T, b *Bot, mock *mocks.MockBot, email string) {
	t.Helper()
	b.handleLoginCore(context.Background(), mock, mocks.CommandUpdate(testChatID, testUserID, "/login "+email))
	require.Contains(t, mock.LastSentMessage().Text, "Connecté")
	mock.Reset()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fileServer serves body for every request and counts them.
func fileServer(t *testing.T, status int, body []byte) (*httptest.Server, *int) {
	t.Helper()
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// withReceipt uploads a valid receipt on the open form.
func withReceipt(t *testing.T, b *Bot, mock *mocks.MockBot, body []byte) {
	t.Helper()
	srv, _ := fileServer(t, http.StatusOK, body)
	mock.FileDownloadLinkToReturn = srv.URL + "/ticket.png"
	b.defaultHandlerCore(context.Background(), mock,
		mocks.DocumentUpdate(testChatID, testUserID, "file-1", "ticket.png", "image/png"))
}
