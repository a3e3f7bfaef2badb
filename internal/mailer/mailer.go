package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/core/events"
	"github.com/jordan-wright/email"
)

// Message is a plain text mail with an HTML alternative.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg internal.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.From,
		auth: auth,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}
	if err := e.Send(s.addr, s.auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("mail not sent, smtp disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}

// NewSender picks SMTP when configured and the log sender otherwise.
func NewSender(cfg internal.MailConfig, logger *slog.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return NewLogSender(logger)
}

// Notifier turns account events into mails.
type Notifier struct {
	sender Sender
	logger *slog.Logger
}

func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, logger: logger}
}

func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeUserInvited, n.handleInvite)
	bus.Subscribe(events.EventTypePasswordResetRequested, n.handleReset)
}

func (n *Notifier) handleInvite(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AccountLinkEvent)
	if !ok {
		return fmt.Errorf("mailer: unexpected payload %T for %s", event, event.EventType())
	}
	return n.deliver(ctx, e, inviteMessage(e))
}

func (n *Notifier) handleReset(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AccountLinkEvent)
	if !ok {
		return fmt.Errorf("mailer: unexpected payload %T for %s", event, event.EventType())
	}
	return n.deliver(ctx, e, resetMessage(e))
}

func (n *Notifier) deliver(ctx context.Context, e *events.AccountLinkEvent, msg Message) error {
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.Info("account mail sent", "event_type", e.EventType(), "user_id", e.UserID)
	return nil
}

func inviteMessage(e *events.AccountLinkEvent) Message {
	valid := validity(e.ExpiresAt, e.OccurredAt())
	return Message{
		To:      e.Email,
		Subject: "You have been invited to the procurement portal",
		Text: fmt.Sprintf("Hello %s,\n\nAn account has been created for you. Set your password here:\n%s\n\nThe link is valid for %s.\n",
			e.Name, e.Link, valid),
		HTML: fmt.Sprintf(`<p>Hello %s,</p><p>An account has been created for you.</p><p><a href="%s">Set your password</a></p><p>The link is valid for %s.</p>`,
			e.Name, e.Link, valid),
	}
}

func resetMessage(e *events.AccountLinkEvent) Message {
	valid := validity(e.ExpiresAt, e.OccurredAt())
	return Message{
		To:      e.Email,
		Subject: "Password reset request",
		Text: fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password:\n%s\n\nThe link is valid for %s. If you did not ask for a reset, ignore this mail.\n",
			e.Name, e.Link, valid),
		HTML: fmt.Sprintf(`<p>Hello %s,</p><p><a href="%s">Reset your password</a></p><p>The link is valid for %s. If you did not ask for a reset, ignore this mail.</p>`,
			e.Name, e.Link, valid),
	}
}

func validity(expiresAt, issuedAt time.Time) string {
	d := expiresAt.Sub(issuedAt).Round(time.Minute)
	if d <= 0 {
		return "a short time"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%d hours", int(d.Hours()))
}
