// Package bot provides the Telegram front-end of the expense report service.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billed/internal/config"
	"gitlab.com/yelinaung/billed/internal/gemini"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const downloadTimeout = 30 * time.Second

// EmployeeDirectory remembers which email a Telegram account logged in with.
type EmployeeDirectory interface {
	Upsert(ctx context.Context, telegramID int64, email string) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Employee, error)
	Delete(ctx context.Context, telegramID int64) error
}

// ReceiptParser extracts bill fields from receipts and names.
type ReceiptParser interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) (*gemini.ReceiptData, error)
	SuggestType(ctx context.Context, name string) (*gemini.TypeSuggestion, error)
}

// Deps are the collaborators of the bot. Employees and Parser are optional.
type Deps struct {
	Store     store.BillStore
	Employees EmployeeDirectory
	Parser    ReceiptParser
}

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot        *tgbot.Bot
	cfg        *config.Config
	store      store.BillStore
	employees  EmployeeDirectory
	parser     ReceiptParser
	httpClient *http.Client

	mu    sync.Mutex
	chats map[int64]*chatState
}

// New creates a new Bot instance.
func New(cfg *config.Config, deps Deps) (*Bot, error) {
	b := newBot(cfg, deps)

	opts := []tgbot.Option{
		tgbot.WithMiddlewares(b.loggingMiddleware, privateChatsOnly),
		tgbot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := tgbot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

func newBot(cfg *config.Config, deps Deps) *Bot {
	return &Bot{
		cfg:       cfg,
		store:     deps.Store,
		employees: deps.Employees,
		parser:    deps.Parser,
		httpClient: &http.Client{
			Timeout:   downloadTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		chats: make(map[int64]*chatState),
	}
}

// Start begins polling for updates.
func (b *Bot) Start(ctx context.Context) {
	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

func (b *Bot) registerHandlers() {
	text := tgbot.HandlerTypeMessageText
	b.bot.RegisterHandler(text, "/start", tgbot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(text, "/help", tgbot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(text, "/login", tgbot.MatchTypePrefix, b.handleLogin)
	b.bot.RegisterHandler(text, "/logout", tgbot.MatchTypePrefix, b.handleLogout)
	b.bot.RegisterHandler(text, "/bills", tgbot.MatchTypePrefix, b.handleBills)
	b.bot.RegisterHandler(text, "/newbill", tgbot.MatchTypePrefix, b.handleNewBill)
	b.bot.RegisterHandler(text, "/submit", tgbot.MatchTypePrefix, b.handleSubmit)
	b.bot.RegisterHandler(text, "/cancel", tgbot.MatchTypePrefix, b.handleCancel)
	b.bot.RegisterHandler(text, "/chart", tgbot.MatchTypePrefix, b.handleChart)
	b.bot.RegisterHandler(text, "/export", tgbot.MatchTypePrefix, b.handleExport)

	callback := tgbot.HandlerTypeCallbackQueryData
	b.bot.RegisterHandler(callback, callbackReceiptPrefix, tgbot.MatchTypePrefix, b.handleReceiptCallback)
	b.bot.RegisterHandler(callback, callbackNewBill, tgbot.MatchTypeExact, b.handleNewBillCallback)
}

// loggingMiddleware logs every update with hashed identifiers.
func (b *Bot) loggingMiddleware(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, tgBot *tgbot.Bot, update *tgmodels.Update) {
		if extractUserID(update) == 0 {
			return
		}
		logUserAction(update)
		next(ctx, tgBot, update)
	}
}

// privateChatsOnly drops updates from groups and channels. Sessions are kept
// per chat, so a shared chat would share one employee's bills.
func privateChatsOnly(next tgbot.HandlerFunc) tgbot.HandlerFunc {
	return func(ctx context.Context, tgBot *tgbot.Bot, update *tgmodels.Update) {
		if !isPrivateChat(update) {
			logger.Log.Debug().Msg("Ignoring update outside a private chat")
			return
		}
		next(ctx, tgBot, update)
	}
}

func isPrivateChat(update *tgmodels.Update) bool {
	switch {
	case update.Message != nil:
		return update.Message.Chat.Type == "private"
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.Type == "private"
	default:
		return false
	}
}

func logUserAction(update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("chat_hash", logger.HashChatID(msg.Chat.ID))

		if msg.Text != "" {
			event = event.Str("text", logger.SanitizeText(msg.Text))
		}
		if len(msg.Photo) > 0 {
			event = event.Str("type", "photo")
		}
		if msg.Document != nil {
			event = event.Str("type", "document").
				Str("filename", logger.SanitizeFileName(msg.Document.FileName))
		}

		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashChatID(update.CallbackQuery.From.ID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// defaultHandler routes receipt uploads and answers anything else with help.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *tgbot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	if update.Message.Document != nil || len(update.Message.Photo) > 0 {
		b.handleReceiptUploadCore(ctx, tg, update)
		return
	}

	_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   "Je n'ai pas compris. Utilisez /help pour voir les commandes disponibles.",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send default response")
	}
}
