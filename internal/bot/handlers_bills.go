package bot

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billed/internal/bills"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/receipts"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
)

const (
	callbackReceiptPrefix = "receipt_"
	callbackNewBill       = "newbill"

	// maxListedBills caps the rows of one bills message.
	maxListedBills = 20
)

func (b *Bot) handleBills(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleBillsCore(ctx, tgBot, update)
}

// handleBillsCore shows the employee's bills, most recent first.
func (b *Bot) handleBillsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := b.requireSession(ctx, tg, st, chatID, update.Message.From.ID)
	if !ok {
		return
	}
	b.showBills(ctx, tg, st, chatID, sess)
}

// showBills opens a fresh bills page and renders it. st.mu must be held.
func (b *Bot) showBills(ctx context.Context, tg TelegramAPI, st *chatState, chatID int64, sess session.Session) {
	list := st.openList(b, sess)

	rows, err := list.GetBills(ctx)
	if err != nil {
		reply(ctx, tg, chatID, "❌ "+html.EscapeString(err.Error()))
		return
	}
	st.rows = rows

	text, markup := renderBills(rows)
	_, err = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send bills")
	}
}

// renderBills formats rows as a numbered list with one preview button per row.
func renderBills(rows []bills.Row) (string, *models.InlineKeyboardMarkup) {
	newBill := []models.InlineKeyboardButton{{Text: "➕ Nouvelle note", CallbackData: callbackNewBill}}

	if len(rows) == 0 {
		return "🧾 Aucune note de frais pour le moment.",
			&models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{newBill}}
	}

	shown := rows
	if len(shown) > maxListedBills {
		shown = shown[:maxListedBills]
	}

	var sb strings.Builder
	sb.WriteString("🧾 <b>Mes notes de frais</b>\n\n")

	var keyboard [][]models.InlineKeyboardButton
	var line []models.InlineKeyboardButton
	for i, r := range shown {
		fmt.Fprintf(&sb, "%d. %s · %s · <b>%s</b> · %s € · %s\n",
			i+1,
			html.EscapeString(r.DisplayDate),
			html.EscapeString(r.Type),
			html.EscapeString(r.Name),
			r.Amount.StringFixed(2),
			html.EscapeString(r.DisplayStatus),
		)

		if r.ID == "" {
			continue
		}
		line = append(line, models.InlineKeyboardButton{
			Text:         fmt.Sprintf("👁 %d", i+1),
			CallbackData: callbackReceiptPrefix + r.ID,
		})
		if len(line) == 5 {
			keyboard = append(keyboard, line)
			line = nil
		}
	}
	if len(line) > 0 {
		keyboard = append(keyboard, line)
	}
	keyboard = append(keyboard, newBill)

	if len(rows) > len(shown) {
		fmt.Fprintf(&sb, "\n… et %d autres. Utilisez /export pour la liste complète.", len(rows)-len(shown))
	}

	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func (b *Bot) handleReceiptCallback(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleReceiptCallbackCore(ctx, tgBot, update)
}

// handleReceiptCallbackCore previews the receipt of a listed bill.
func (b *Bot) handleReceiptCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	_, _ = tg.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})

	chatID := query.Message.Message.Chat.ID
	billID := strings.TrimPrefix(query.Data, callbackReceiptPrefix)

	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := b.requireSession(ctx, tg, st, chatID, query.From.ID); !ok {
		return
	}

	var row *bills.Row
	for i := range st.rows {
		if st.rows[i].ID == billID {
			row = &st.rows[i]
			break
		}
	}
	if st.list == nil || row == nil {
		reply(ctx, tg, chatID, "Cette liste n'est plus à jour. Relancez /bills.")
		return
	}

	preview := st.list.OpenReceipt(row.Bill)
	caption := fmt.Sprintf("🧾 <b>%s</b> · %s € · %s",
		html.EscapeString(row.Name), row.Amount.StringFixed(2), html.EscapeString(row.DisplayDate))

	if err := b.sendReceiptPreview(ctx, tg, chatID, preview, caption); err != nil {
		logger.Log.Warn().Err(err).
			Str("bill_id", preview.BillID).
			Msg("Failed to send receipt preview")
		if preview.FileURL == "" {
			reply(ctx, tg, chatID, "❌ Aucun justificatif pour cette note.")
			return
		}
		reply(ctx, tg, chatID, fmt.Sprintf("%s\n\n<a href=\"%s\">Ouvrir le justificatif</a>",
			caption, html.EscapeString(preview.FileURL)))
	}
}

// sendReceiptPreview downloads the receipt and sends it as a thumbnail.
func (b *Bot) sendReceiptPreview(ctx context.Context, tg TelegramAPI, chatID int64, preview bills.Preview, caption string) error {
	if preview.FileURL == "" {
		return fmt.Errorf("bill %s has no receipt", preview.BillID)
	}

	data, err := b.fetch(ctx, preview.FileURL)
	if err != nil {
		return err
	}

	thumb, err := receipts.Thumbnail(data, receipts.PreviewSize)
	if err != nil {
		return fmt.Errorf("failed to build preview: %w", err)
	}

	name := preview.FileName
	if name == "" {
		name = "justificatif.png"
	}
	_, err = tg.SendPhoto(ctx, &tgbot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileUpload{Filename: name, Data: bytes.NewReader(thumb)},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send preview: %w", err)
	}
	return nil
}

func (b *Bot) handleNewBillCallback(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleNewBillCallbackCore(ctx, tgBot, update)
}

// handleNewBillCallbackCore follows the new bill button of the bills list.
func (b *Bot) handleNewBillCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	query := update.CallbackQuery
	if query == nil || query.Message.Message == nil {
		return
	}
	_, _ = tg.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{CallbackQueryID: query.ID})

	chatID := query.Message.Message.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := b.requireSession(ctx, tg, st, chatID, query.From.ID)
	if !ok {
		return
	}

	list := st.list
	if list == nil {
		list = st.openList(b, sess)
	}
	list.NewBill()

	if st.route == routes.NewBill {
		b.startForm(ctx, tg, st, chatID, sess)
	}
}
