package telegram

import (
	"context"
	"strconv"

	"marzhelp/internal/application/reconcile"
	apperrors "marzhelp/internal/shared/errors"
)

// Notifier adapts BotService to the reconciliation notifier port.
// Recipients are Telegram chat ids in decimal form.
type Notifier struct {
	bot *BotService
}

// NewNotifier creates a Telegram-backed notifier.
func NewNotifier(bot *BotService) *Notifier {
	return &Notifier{bot: bot}
}

func (n *Notifier) Send(ctx context.Context, recipient string, text string) error {
	chatID, err := parseChatID(recipient)
	if err != nil {
		return err
	}
	return n.bot.SendMessage(ctx, chatID, text)
}

func (n *Notifier) SendWithChoices(ctx context.Context, recipient string, text string, choices []reconcile.Choice) error {
	chatID, err := parseChatID(recipient)
	if err != nil {
		return err
	}
	if len(choices) == 0 {
		return n.bot.SendMessage(ctx, chatID, text)
	}

	rows := make([][]InlineKeyboardButton, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, []InlineKeyboardButton{{Text: c.Label, CallbackData: c.Data}})
	}
	return n.bot.SendMessageWithInlineKeyboard(ctx, chatID, text, &InlineKeyboardMarkup{InlineKeyboard: rows})
}

func parseChatID(recipient string) (int64, error) {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid telegram recipient", recipient)
	}
	return chatID, nil
}
