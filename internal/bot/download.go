package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbot "github.com/go-telegram/bot"
	"gitlab.com/yelinaung/billed/internal/models"
)

var errFileTooLarge = errors.New("file is too large")

// downloadFile fetches a file the user sent to the bot.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if file.FileSize > models.MaxReceiptSize {
		return nil, errFileTooLarge
	}
	return b.fetch(ctx, tg.FileDownloadLink(file))
}

// fetch downloads url, refusing bodies larger than an accepted upload.
func (b *Bot) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, models.MaxReceiptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > models.MaxReceiptSize {
		return nil, errFileTooLarge
	}
	return data, nil
}
