package reconcile

import "context"

// Choice is one selectable action offered with a notification.
type Choice struct {
	Label string
	Data  string
}

// Notifier delivers notification texts to a recipient. The recipient
// format is channel specific: a chat id for Telegram, an address for
// email.
type Notifier interface {
	Send(ctx context.Context, recipient string, text string) error
	SendWithChoices(ctx context.Context, recipient string, text string, choices []Choice) error
}
