package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billed/internal/gemini"
	"gitlab.com/yelinaung/billed/internal/logger"
	appmodels "gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/newbill"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
	"gitlab.com/yelinaung/billed/internal/store"
)

const noFormText = "Aucune note en cours. Commencez par /newbill."

func (b *Bot) handleNewBill(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleNewBillCore(ctx, tgBot, update)
}

// handleNewBillCore opens an empty new bill form.
func (b *Bot) handleNewBillCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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
	b.startForm(ctx, tg, st, chatID, sess)
}

// startForm replaces the chat's form and explains how to fill it. st.mu must be held.
func (b *Bot) startForm(ctx context.Context, tg TelegramAPI, st *chatState, chatID int64, sess session.Session) {
	st.openForm(b, sess)

	var sb strings.Builder
	sb.WriteString("📝 <b>Nouvelle note de frais</b>\n\n")
	sb.WriteString("Envoyez le justificatif (jpg, jpeg ou png), puis :\n")
	sb.WriteString("<code>/submit type;nom;date;montant;tva;pct;commentaire</code>\n\n")
	sb.WriteString("<b>Types</b>\n")
	for i, t := range appmodels.ExpenseTypes {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, html.EscapeString(t))
	}
	fmt.Fprintf(&sb, "\nPct vaut %d par défaut. /cancel pour abandonner.", appmodels.DefaultPct)

	reply(ctx, tg, chatID, sb.String())
}

// handleReceiptUploadCore applies a document or photo to the open form.
func (b *Bot) handleReceiptUploadCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	chatID := msg.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := b.requireSession(ctx, tg, st, chatID, msg.From.ID); !ok {
		return
	}
	if st.form == nil {
		reply(ctx, tg, chatID, noFormText)
		return
	}

	var fileID, name, mimeType string
	var size int64
	switch {
	case msg.Document != nil:
		fileID = msg.Document.FileID
		name = msg.Document.FileName
		mimeType = msg.Document.MimeType
		size = msg.Document.FileSize
	case len(msg.Photo) > 0:
		// Telegram re-encodes photos as JPEG; the largest size comes last.
		largest := msg.Photo[len(msg.Photo)-1]
		fileID = largest.FileID
		name = largest.FileUniqueID + ".jpg"
		mimeType = "image/jpeg"
		size = int64(largest.FileSize)
	default:
		return
	}

	if err := newbill.ValidateFile(name); err != nil {
		_ = st.form.SelectFile(newbill.File{Name: name})
		b.showFileError(ctx, tg, st, chatID)
		return
	}

	if size > appmodels.MaxReceiptSize {
		reply(ctx, tg, chatID, "❌ Ce fichier dépasse 10 Mo.")
		return
	}

	data, err := b.downloadFile(ctx, tg, fileID)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Str("file", logger.SanitizeFileName(name)).
			Msg("Failed to download receipt")
		if errors.Is(err, errFileTooLarge) {
			reply(ctx, tg, chatID, "❌ Ce fichier dépasse 10 Mo.")
			return
		}
		reply(ctx, tg, chatID, "❌ Téléchargement du justificatif impossible. Réessayez.")
		return
	}

	if err := st.form.SelectFile(newbill.File{Name: name, ContentType: mimeType, Data: data}); err != nil {
		b.showFileError(ctx, tg, st, chatID)
		return
	}
	b.clearFileError(ctx, tg, st, chatID)

	text := fmt.Sprintf("📎 Justificatif <b>%s</b> reçu.", html.EscapeString(name))
	if prefill, ok := b.prefillFromReceipt(ctx, st.form, data, mimeType); ok {
		text += "\n\n" + prefill
	} else {
		text += "\n\nComplétez avec <code>/submit type;nom;date;montant;tva;pct;commentaire</code>"
	}
	reply(ctx, tg, chatID, text)
}

// showFileError displays the form's file error, editing the previous one in place.
func (b *Bot) showFileError(ctx context.Context, tg TelegramAPI, st *chatState, chatID int64) {
	text := fmt.Sprintf("⚠️ %s\n\nSeuls les fichiers jpg, jpeg et png sont acceptés.",
		html.EscapeString(st.form.ErrorMessage()))

	if st.errorMsgID != 0 {
		_, err := tg.EditMessageText(ctx, &tgbot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: st.errorMsgID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err == nil {
			return
		}
		logger.Log.Debug().Err(err).Msg("Failed to edit file error, sending a new one")
	}

	sent, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send file error")
		return
	}
	st.errorMsgID = sent.ID
}

// clearFileError replaces a displayed file error once a valid file is chosen.
func (b *Bot) clearFileError(ctx context.Context, tg TelegramAPI, st *chatState, chatID int64) {
	if st.errorMsgID == 0 {
		return
	}
	_, err := tg.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: st.errorMsgID,
		Text:      "✅ Justificatif accepté.",
	})
	if err != nil {
		logger.Log.Debug().Err(err).Msg("Failed to clear file error")
	}
	st.errorMsgID = 0
}

// prefillFromReceipt reads the receipt and stores what it found on the form.
// It returns a summary of the prefilled values.
func (b *Bot) prefillFromReceipt(ctx context.Context, form *newbill.Form, data []byte, mimeType string) (string, bool) {
	if b.parser == nil {
		return "", false
	}

	receipt, err := b.parser.ParseReceipt(ctx, data, mimeType)
	if err != nil {
		if !errors.Is(err, gemini.ErrNoData) {
			logger.Log.Warn().Err(err).Msg("Failed to read receipt")
		}
		return "", false
	}

	fields := form.Fields()
	if receipt.HasMerchant() && fields.Name == "" {
		fields.Name = receipt.Merchant
	}
	if receipt.HasAmount() && fields.Amount.IsZero() {
		fields.Amount = receipt.Amount
	}
	if receipt.VAT.IsPositive() && fields.VAT.IsZero() {
		fields.VAT = receipt.VAT
	}
	if receipt.Date != "" && fields.Date == "" {
		fields.Date = receipt.Date
	}
	if receipt.SuggestedType != "" && fields.Type == "" {
		fields.Type = receipt.SuggestedType
	}
	form.SetFields(fields)

	return fmt.Sprintf("🔍 <b>Lu sur le justificatif</b>\nType : %s\nNom : %s\nDate : %s\nMontant : %s €\nTVA : %s €\n\n"+
		"Envoyez /submit pour valider ces valeurs, ou <code>/submit type;nom;date;montant;…</code> pour les remplacer.",
		orDash(fields.Type), orDash(fields.Name), orDash(fields.Date),
		fields.Amount.StringFixed(2), fields.VAT.StringFixed(2)), true
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return html.EscapeString(s)
}

func (b *Bot) handleSubmit(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleSubmitCore(ctx, tgBot, update)
}

// handleSubmitCore sends the open form to the store.
func (b *Bot) handleSubmitCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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
	if st.form == nil {
		reply(ctx, tg, chatID, noFormText)
		return
	}

	fields := st.form.Fields()
	if args := commandArgs(update.Message.Text, "/submit"); args != "" {
		parsed, err := parseSubmitArgs(args)
		if err != nil {
			reply(ctx, tg, chatID, "❌ "+html.EscapeString(err.Error())+
				"\n\nFormat : <code>/submit type;nom;date;montant;tva;pct;commentaire</code>")
			return
		}
		fields = parsed
	}

	if fields.Type == "" && fields.Name != "" {
		fields.Type = b.suggestType(ctx, fields.Name)
	}

	bill, err := st.form.Submit(ctx, fields)
	switch {
	case errors.Is(err, newbill.ErrNoValidFile):
		reply(ctx, tg, chatID, "📎 Envoyez d'abord un justificatif jpg, jpeg ou png.")
		return
	case errors.Is(err, newbill.ErrInvalidFields):
		reply(ctx, tg, chatID, "❌ "+html.EscapeString(err.Error()))
		return
	case store.IsFetchError(err):
		reply(ctx, tg, chatID, "❌ "+html.EscapeString(err.Error())+"\n\nVos valeurs sont conservées, renvoyez /submit pour réessayer.")
		return
	case err != nil:
		logger.Log.Error().Err(err).Msg("Failed to submit bill")
		reply(ctx, tg, chatID, "❌ Envoi impossible. Réessayez.")
		return
	}

	reply(ctx, tg, chatID, fmt.Sprintf("✅ Note <b>%s</b> envoyée (%s €).",
		html.EscapeString(bill.Name), bill.Amount.StringFixed(2)))

	if st.route == routes.Bills {
		st.closeForm()
		b.showBills(ctx, tg, st, chatID, sess)
	}
}

// suggestType asks the parser for the expense type of name, or returns "".
func (b *Bot) suggestType(ctx context.Context, name string) string {
	if b.parser == nil {
		return ""
	}
	suggestion, err := b.parser.SuggestType(ctx, name)
	if err != nil {
		logger.Log.Debug().Err(err).Msg("No type suggestion")
		return ""
	}
	return suggestion.Type
}
