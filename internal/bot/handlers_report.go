package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/bills"
	"gitlab.com/yelinaung/billed/internal/logger"
)

// reportRows loads the bills of the chat's employee without touching its pages.
func (b *Bot) reportRows(ctx context.Context, tg TelegramAPI, update *models.Update) ([]bills.Row, bool) {
	chatID := update.Message.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	sess, ok := b.requireSession(ctx, tg, st, chatID, update.Message.From.ID)
	st.mu.Unlock()
	if !ok {
		return nil, false
	}

	rows, err := bills.New(b.store, sess, nil).GetBills(ctx)
	if err != nil {
		reply(ctx, tg, chatID, "❌ "+html.EscapeString(err.Error()))
		return nil, false
	}
	if len(rows) == 0 {
		reply(ctx, tg, chatID, "🧾 Aucune note de frais pour le moment.")
		return nil, false
	}
	return rows, true
}

func (b *Bot) handleChart(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore sends a pie chart of the employee's bills per expense type.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	rows, ok := b.reportRows(ctx, tg, update)
	if !ok {
		return
	}

	chartData, err := GenerateBillsChart(rows)
	if errors.Is(err, errNoBills) {
		reply(ctx, tg, chatID, "📊 Aucun montant à représenter.")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate chart")
		reply(ctx, tg, chatID, "❌ Impossible de générer le graphique. Réessayez.")
		return
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
	}

	_, err = tg.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: chartFilename(time.Now()), Data: bytes.NewReader(chartData)},
		Caption:   fmt.Sprintf("📊 <b>Répartition par type</b>\n\nTotal : %s €\nNotes : %d", total.StringFixed(2), len(rows)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart document")
		reply(ctx, tg, chatID, "❌ Impossible d'envoyer le graphique. Réessayez.")
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Int("bill_count", len(rows)).
		Msg("Chart sent")
}

func (b *Bot) handleExport(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore sends the employee's bills as a CSV file.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	rows, ok := b.reportRows(ctx, tg, update)
	if !ok {
		return
	}

	csvData, err := GenerateBillsCSV(rows)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate CSV")
		reply(ctx, tg, chatID, "❌ Impossible de générer l'export. Réessayez.")
		return
	}

	_, err = tg.SendDocument(ctx, &tgbot.SendDocumentParams{
		ChatID:    chatID,
		Document:  &models.InputFileUpload{Filename: exportFilename(time.Now()), Data: bytes.NewReader(csvData)},
		Caption:   fmt.Sprintf("📄 %d notes de frais", len(rows)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send CSV document")
		reply(ctx, tg, chatID, "❌ Impossible d'envoyer l'export. Réessayez.")
	}
}
