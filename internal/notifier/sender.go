package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/nmoreau/gatherly-backend/pkg/config"
	"github.com/nmoreau/gatherly-backend/pkg/enums"
	"github.com/nmoreau/gatherly-backend/pkg/logger"
)

// Sender delivers a single notification to its recipient.
type Sender interface {
	Send(ctx context.Context, notification Notification) error
}

// NewSender picks the delivery backend from config: SMTP when mail settings
// are present, otherwise a log-only sender so development environments work
// without a mail relay.
func NewSender(cfg config.MailConfig, log *logger.Logger) Sender {
	if cfg.Enabled() {
		return &SMTPSender{cfg: cfg}
	}
	return &LogSender{log: log}
}

// SMTPSender delivers notifications as plain-text email over SMTP.
type SMTPSender struct {
	cfg config.MailConfig
}

func (s *SMTPSender) Send(_ context.Context, notification Notification) error {
	subject, body := renderMessage(notification)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", notification.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{notification.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", notification.Recipient, err)
	}
	return nil
}

// LogSender records the notification instead of delivering it.
type LogSender struct {
	log *logger.Logger
}

func (s *LogSender) Send(ctx context.Context, notification Notification) error {
	subject, _ := renderMessage(notification)
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"kind":      string(notification.Kind),
		"recipient": notification.Recipient,
		"subject":   subject,
	}), "notification (mail disabled)")
	return nil
}

func renderMessage(notification Notification) (subject, body string) {
	data := notification.Data
	switch notification.Kind {
	case enums.NotificationWelcome:
		subject = "Welcome to Gatherly"
		body = fmt.Sprintf("Hi %s,\n\nYour account is ready. Create an organization to start publishing events.\n", data["name"])
	case enums.NotificationInvitationReceived:
		subject = fmt.Sprintf("You have been invited to join %s", data["organization"])
		body = fmt.Sprintf("Hi,\n\n%s invited you to join %s as %s. Sign in to accept or decline the invitation.\n",
			data["inviter"], data["organization"], data["role"])
	case enums.NotificationTicketConfirmation:
		subject = fmt.Sprintf("Your ticket for %s", data["event"])
		body = fmt.Sprintf("Hi %s,\n\nYour reservation for %s on %s is confirmed.\n",
			data["name"], data["event"], data["start"])
	default:
		subject = "Gatherly notification"
		body = "You have a new notification.\n"
	}
	return subject, body
}
