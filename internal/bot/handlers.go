package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billed/internal/logger"
	appmodels "gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/session"
)

const helpText = `<b>Commandes disponibles</b>

/login &lt;email&gt; - Ouvrir une session employé
/logout - Fermer la session
/bills - Mes notes de frais, les plus récentes d'abord
/newbill - Nouvelle note de frais
/submit - Envoyer la note en cours
/cancel - Abandonner la note en cours
/chart - Répartition par type
/export - Export CSV

<b>Envoyer une note</b>
1. /newbill
2. Joignez le justificatif (jpg, jpeg ou png)
3. <code>/submit type;nom;date;montant;tva;pct;commentaire</code>

Le type est un numéro de la liste ou son nom, la date au format AAAA-MM-JJ. TVA, pct et commentaire sont facultatifs.`

const loginRequiredText = "🔒 Connectez-vous d'abord avec <code>/login votre@email</code>."

// reply sends an HTML message to chatID and logs delivery failures.
func reply(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to send message")
	}
}

// commandArgs returns the text following command, without the bot mention.
func commandArgs(text, command string) string {
	rest := strings.TrimPrefix(text, command)
	if strings.HasPrefix(rest, "@") {
		if i := strings.IndexAny(rest, " \n"); i >= 0 {
			rest = rest[i:]
		} else {
			rest = ""
		}
	}
	return strings.TrimSpace(rest)
}

// requireSession loads the employee session or tells the user to log in.
func (b *Bot) requireSession(ctx context.Context, tg TelegramAPI, st *chatState, chatID, userID int64) (session.Session, bool) {
	sess, err := b.currentSession(ctx, st, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNoUser) {
			logger.Log.Warn().Err(err).
				Str("chat_hash", logger.HashChatID(chatID)).
				Msg("Rejected session")
		}
		reply(ctx, tg, chatID, loginRequiredText)
		return session.Session{}, false
	}
	return sess, true
}

func (b *Bot) handleStart(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := "là"
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}

	reply(ctx, tg, update.Message.Chat.ID,
		fmt.Sprintf("👋 Bonjour %s !\n\nJe gère vos notes de frais.\n\n%s", html.EscapeString(name), helpText))
}

func (b *Bot) handleHelp(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}
	reply(ctx, tg, update.Message.Chat.ID, helpText)
}

func (b *Bot) handleLogin(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleLoginCore(ctx, tgBot, update)
}

// handleLoginCore opens an employee session for the given email.
func (b *Bot) handleLoginCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	email := strings.ToLower(commandArgs(update.Message.Text, "/login"))

	if email == "" {
		reply(ctx, tg, chatID, "Usage : <code>/login votre@email</code>")
		return
	}
	if !b.cfg.IsEmailAllowed(email) {
		logger.Log.Warn().
			Str("user_hash", logger.HashEmail(email)).
			Msg("Login with disallowed email")
		reply(ctx, tg, chatID, "⛔ Cette adresse email n'est pas autorisée.")
		return
	}

	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.reset()
	sess := session.Session{Type: appmodels.UserTypeEmployee, Email: email}
	if err := session.Save(st.sessions, sess); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to save session")
		reply(ctx, tg, chatID, "❌ Impossible d'ouvrir la session. Réessayez.")
		return
	}

	if b.employees != nil {
		if err := b.employees.Upsert(ctx, userID, email); err != nil {
			logger.Log.Error().Err(err).
				Str("user_hash", logger.HashEmail(email)).
				Msg("Failed to remember employee")
		}
	}

	logger.Log.Info().
		Str("user_hash", logger.HashEmail(email)).
		Msg("Employee logged in")

	reply(ctx, tg, chatID, fmt.Sprintf("✅ Connecté en tant que <b>%s</b>.\n\nUtilisez /bills pour voir vos notes.",
		html.EscapeString(email)))
}

func (b *Bot) handleLogout(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleLogoutCore(ctx, tgBot, update)
}

func (b *Bot) handleLogoutCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.reset()
	if b.employees != nil {
		if err := b.employees.Delete(ctx, update.Message.From.ID); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to forget employee")
		}
	}

	reply(ctx, tg, chatID, "👋 Session fermée.")
}

func (b *Bot) handleCancel(ctx context.Context, tgBot *tgbot.Bot, update *models.Update) {
	b.handleCancelCore(ctx, tgBot, update)
}

func (b *Bot) handleCancelCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	st := b.chat(chatID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.form == nil {
		reply(ctx, tg, chatID, "Aucune note en cours.")
		return
	}
	st.closeForm()
	reply(ctx, tg, chatID, "🗑 Note abandonnée.")
}
