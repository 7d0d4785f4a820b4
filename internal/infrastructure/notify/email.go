package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"aegis/internal/domain/user"
	"aegis/internal/shared/config"
	"aegis/internal/shared/services/markdown"
)

// EmailNotifier sends notifications over SMTP. The markdown body is rendered
// to sanitized HTML; the raw markdown doubles as the plain-text part.
type EmailNotifier struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	users    user.Repository
	renderer markdown.Renderer
}

func NewEmailNotifier(cfg *config.EmailConfig, users user.Repository) *EmailNotifier {
	return &EmailNotifier{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
		users:    users,
		renderer: markdown.NewRenderer(),
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, userID uint, subject, bodyMarkdown string) error {
	recipient, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve notification recipient: %w", err)
	}

	htmlBody, err := n.renderer.ToHTMLSanitized(bodyMarkdown)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", n.from, n.fromName)
	msg.SetHeader("To", recipient.Email())
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", bodyMarkdown)
	msg.AddAlternative("text/html", htmlBody)

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
