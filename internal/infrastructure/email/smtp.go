// Package email implements notification delivery over SMTP.
package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"marzhelp/internal/application/reconcile"
	"marzhelp/internal/shared/config"
	apperrors "marzhelp/internal/shared/errors"
)

// Notifier delivers notifications as plain emails. Recipients are
// addresses; inline choices degrade to a listed set of options since
// email has no interactive buttons.
type Notifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewNotifier creates an SMTP-backed notifier.
func NewNotifier(cfg *config.EmailConfig) *Notifier {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}
	return &Notifier{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   from,
	}
}

func (n *Notifier) Send(_ context.Context, recipient string, text string) error {
	return n.deliver(recipient, text)
}

func (n *Notifier) SendWithChoices(_ context.Context, recipient string, text string, choices []reconcile.Choice) error {
	if len(choices) > 0 {
		var b strings.Builder
		b.WriteString(text)
		b.WriteString("<br><br>")
		for _, c := range choices {
			fmt.Fprintf(&b, "• %s<br>", c.Label)
		}
		text = b.String()
	}
	return n.deliver(recipient, text)
}

func (n *Notifier) deliver(recipient, text string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "Panel quota notification")
	m.SetBody("text/html", text)

	if err := n.dialer.DialAndSend(m); err != nil {
		return apperrors.NewUnavailableError("failed to send email", err.Error())
	}
	return nil
}
