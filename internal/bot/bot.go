// Package bot is the conversational front-end: a Telegram long-polling bot
// driving the expense API through short per-chat dialogues. Each dialogue is
// an explicit finite-state machine (see fsm.go); one message advances one
// state, invalid input re-prompts in place, and /cancel or completion resets
// the chat to the idle state.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vydatky/internal/core"
)

// Button labels double as commands on the reply keyboard.
const (
	ButtonAdd    = "Add expense"
	ButtonReport = "Get report"
	ButtonDelete = "Delete expense"
	ButtonUpdate = "Edit expense"
)

var dateInputRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Messenger sends outbound chat messages and documents.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboardMarkup) error
	SendDocument(ctx context.Context, chatID int64, filename string, doc []byte, caption string) error
}

// Backend is the expense API surface the dialogues need.
type Backend interface {
	CreateExpense(ctx context.Context, description, date, amount string) (Expense, error)
	GetExpense(ctx context.Context, id int64) (Expense, error)
	UpdateExpense(ctx context.Context, id int64, description, amount string) (Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	FetchReport(ctx context.Context, start, end string) ([]byte, error)
	FetchInventory(ctx context.Context) ([]byte, error)
}

type Bot struct {
	messenger Messenger
	backend   Backend
	store     *Store
}

func New(messenger Messenger, backend Backend) *Bot {
	return &Bot{
		messenger: messenger,
		backend:   backend,
		store:     NewStore(),
	}
}

func mainKeyboard() *ReplyKeyboardMarkup {
	return &ReplyKeyboardMarkup{
		Keyboard: [][]KeyboardButton{{
			{Text: ButtonAdd},
			{Text: ButtonDelete},
			{Text: ButtonReport},
			{Text: ButtonUpdate},
		}},
		ResizeKeyboard: true,
	}
}

// HandleMessage processes one incoming text message for a chat. Commands and
// keyboard buttons start flows from any state; other text feeds the state the
// chat is currently in.
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)

	switch text {
	case "/start":
		b.store.Reset(chatID)
		b.send(ctx, chatID, "Hello! Pick an action below.", mainKeyboard())
		return
	case "/cancel":
		b.store.Reset(chatID)
		b.send(ctx, chatID, "Cancelled. Back to the main menu.", mainKeyboard())
		return
	case ButtonAdd:
		b.store.Set(chatID, Conversation{State: StateAddDescription})
		b.send(ctx, chatID, "Enter the expense description:", nil)
		return
	case ButtonReport:
		b.store.Set(chatID, Conversation{State: StateReportStart})
		b.send(ctx, chatID, "Enter the period start date (dd.mm.yyyy):", nil)
		return
	case ButtonDelete:
		b.startIDFlow(ctx, chatID, StateDeleteID, "Enter the ID of the expense to delete:")
		return
	case ButtonUpdate:
		b.startIDFlow(ctx, chatID, StateUpdateID, "Enter the ID of the expense to edit:")
		return
	}

	conv := b.store.Get(chatID)
	switch conv.State {
	case StateIdle:
		b.send(ctx, chatID, "Pick an action from the menu, or /start to see it.", mainKeyboard())
	case StateAddDescription:
		b.handleAddDescription(ctx, chatID, conv, text)
	case StateAddDate:
		b.handleAddDate(ctx, chatID, conv, text)
	case StateAddAmount:
		b.handleAddAmount(ctx, chatID, conv, text)
	case StateReportStart:
		b.handleReportStart(ctx, chatID, conv, text)
	case StateReportEnd:
		b.handleReportEnd(ctx, chatID, conv, text)
	case StateDeleteID:
		b.handleDeleteID(ctx, chatID, text)
	case StateUpdateID:
		b.handleUpdateID(ctx, chatID, conv, text)
	case StateUpdateDescription:
		b.handleUpdateDescription(ctx, chatID, conv, text)
	case StateUpdateAmount:
		b.handleUpdateAmount(ctx, chatID, conv, text)
	default:
		// Unknown state in the store; recover by resetting.
		b.store.Reset(chatID)
		b.send(ctx, chatID, "Something went wrong, back to the main menu.", mainKeyboard())
	}
}

// startIDFlow sends the full inventory so the user can look up the id, then
// waits for it.
func (b *Bot) startIDFlow(ctx context.Context, chatID int64, state State, prompt string) {
	doc, err := b.backend.FetchInventory(ctx)
	if err != nil {
		b.reportBackendError(ctx, chatID, err)
		return
	}
	if err := b.messenger.SendDocument(ctx, chatID, "all_expenses.xlsx", doc, "All expenses so far."); err != nil {
		slog.ErrorContext(ctx, "Failed to send inventory document", "error", err, "chat_id", chatID)
	}
	b.store.Set(chatID, Conversation{State: state})
	b.send(ctx, chatID, prompt, nil)
}

func (b *Bot) handleAddDescription(ctx context.Context, chatID int64, conv Conversation, text string) {
	if text == "" {
		b.send(ctx, chatID, "The description cannot be empty. Enter the expense description:", nil)
		return
	}
	conv.Draft.Description = text
	conv.State = Next(conv.State)
	b.store.Set(chatID, conv)
	b.send(ctx, chatID, "Enter the date (dd.mm.yyyy):", nil)
}

func (b *Bot) handleAddDate(ctx context.Context, chatID int64, conv Conversation, text string) {
	if !validDateInput(text) {
		b.send(ctx, chatID, "Invalid date format. Try again (dd.mm.yyyy):", nil)
		return
	}
	conv.Draft.Date = text
	conv.State = Next(conv.State)
	b.store.Set(chatID, conv)
	b.send(ctx, chatID, "Enter the amount in UAH:", nil)
}

func (b *Bot) handleAddAmount(ctx context.Context, chatID int64, conv Conversation, text string) {
	if _, err := core.ParseDecimalToCents(text); err != nil {
		b.send(ctx, chatID, "Invalid amount. Enter a positive number:", nil)
		return
	}
	conv.Draft.Amount = text

	expense, err := b.backend.CreateExpense(ctx, conv.Draft.Description, conv.Draft.Date, conv.Draft.Amount)
	if err != nil {
		b.reportBackendError(ctx, chatID, err)
		return
	}

	b.store.Reset(chatID)
	b.send(ctx, chatID, fmt.Sprintf("Saved #%d: %s — %.2f UAH (%.2f USD).",
		expense.ID, expense.Description, expense.AmountLocal, expense.AmountRef), mainKeyboard())
}

func (b *Bot) handleReportStart(ctx context.Context, chatID int64, conv Conversation, text string) {
	if !validDateInput(text) {
		b.send(ctx, chatID, "Invalid date format. Try again (dd.mm.yyyy):", nil)
		return
	}
	conv.Draft.RangeStart = text
	conv.State = Next(conv.State)
	b.store.Set(chatID, conv)
	b.send(ctx, chatID, "Enter the period end date (dd.mm.yyyy):", nil)
}

func (b *Bot) handleReportEnd(ctx context.Context, chatID int64, conv Conversation, text string) {
	if !validDateInput(text) {
		b.send(ctx, chatID, "Invalid date format. Try again (dd.mm.yyyy):", nil)
		return
	}

	doc, err := b.backend.FetchReport(ctx, conv.Draft.RangeStart, text)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			b.store.Reset(chatID)
			b.send(ctx, chatID, "No expenses found for that period.", mainKeyboard())
			return
		}
		b.reportBackendError(ctx, chatID, err)
		return
	}

	caption := fmt.Sprintf("Your expense report from %s to %s.", conv.Draft.RangeStart, text)
	if err := b.messenger.SendDocument(ctx, chatID, "expense_report.xlsx", doc, caption); err != nil {
		slog.ErrorContext(ctx, "Failed to send report document", "error", err, "chat_id", chatID)
	}
	b.store.Reset(chatID)
	b.send(ctx, chatID, "Back to the main menu.", mainKeyboard())
}

func (b *Bot) handleDeleteID(ctx context.Context, chatID int64, text string) {
	id, err := parseID(text)
	if err != nil {
		b.send(ctx, chatID, "Enter a valid numeric ID:", nil)
		return
	}

	if err := b.backend.DeleteExpense(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			b.store.Reset(chatID)
			b.send(ctx, chatID, "No expense with that ID.", mainKeyboard())
			return
		}
		b.reportBackendError(ctx, chatID, err)
		return
	}

	b.store.Reset(chatID)
	b.send(ctx, chatID, "Expense deleted.", mainKeyboard())
}

func (b *Bot) handleUpdateID(ctx context.Context, chatID int64, conv Conversation, text string) {
	id, err := parseID(text)
	if err != nil {
		b.send(ctx, chatID, "Enter a valid numeric ID:", nil)
		return
	}

	expense, err := b.backend.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			b.store.Reset(chatID)
			b.send(ctx, chatID, "No expense with that ID.", mainKeyboard())
			return
		}
		b.reportBackendError(ctx, chatID, err)
		return
	}

	conv.Draft.ExpenseID = id
	conv.State = Next(conv.State)
	b.store.Set(chatID, conv)
	b.send(ctx, chatID, fmt.Sprintf("Current record:\nID: %d\nDescription: %s\nAmount: %.2f UAH\n\nEnter the new description:",
		expense.ID, expense.Description, expense.AmountLocal), nil)
}

func (b *Bot) handleUpdateDescription(ctx context.Context, chatID int64, conv Conversation, text string) {
	if text == "" {
		b.send(ctx, chatID, "The description cannot be empty. Enter the new description:", nil)
		return
	}
	conv.Draft.Description = text
	conv.State = Next(conv.State)
	b.store.Set(chatID, conv)
	b.send(ctx, chatID, "Enter the new amount in UAH:", nil)
}

func (b *Bot) handleUpdateAmount(ctx context.Context, chatID int64, conv Conversation, text string) {
	if _, err := core.ParseDecimalToCents(text); err != nil {
		b.send(ctx, chatID, "Invalid amount. Enter a positive number:", nil)
		return
	}

	expense, err := b.backend.UpdateExpense(ctx, conv.Draft.ExpenseID, conv.Draft.Description, text)
	if err != nil {
		b.reportBackendError(ctx, chatID, err)
		return
	}

	b.store.Reset(chatID)
	b.send(ctx, chatID, fmt.Sprintf("Updated #%d: %s — %.2f UAH (%.2f USD).",
		expense.ID, expense.Description, expense.AmountLocal, expense.AmountRef), mainKeyboard())
}

// reportBackendError phrases a backend failure for the user. Validation
// failures re-prompt in place; everything else resets the conversation so
// the user can retry later.
func (b *Bot) reportBackendError(ctx context.Context, chatID int64, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		b.send(ctx, chatID, "That input was rejected: "+err.Error()+"\nTry again:", nil)
	case errors.Is(err, core.ErrRateUnavailable):
		b.store.Reset(chatID)
		b.send(ctx, chatID, "The exchange rate source is unavailable right now. Nothing was saved — please try again later.", mainKeyboard())
	default:
		slog.ErrorContext(ctx, "Backend call failed", "error", err, "chat_id", chatID)
		b.store.Reset(chatID)
		b.send(ctx, chatID, "The server is not responding. Please try again later.", mainKeyboard())
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboardMarkup) {
	if err := b.messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		slog.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

func validDateInput(s string) bool {
	if !dateInputRe.MatchString(s) {
		return false
	}
	_, err := core.ParseDate(s)
	return err == nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Poller drives the bot from the Telegram long-polling API.
type Poller struct {
	client  *TelegramClient
	bot     *Bot
	timeout time.Duration
}

func NewPoller(client *TelegramClient, bot *Bot, timeout time.Duration) *Poller {
	return &Poller{client: client, bot: bot, timeout: timeout}
}

// Run polls until the context is cancelled. Transport errors back off
// briefly instead of spinning.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.ErrorContext(ctx, "Polling failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			p.bot.HandleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}
