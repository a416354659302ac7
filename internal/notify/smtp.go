package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPNotifier sends HTML email through an SMTP relay.
type SMTPNotifier struct {
	renderer *Renderer
	sender   Sender
	from     string
	timeout  time.Duration
}

var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier builds a notifier that dials cfg.Host for every message.
func NewSMTPNotifier(cfg SMTPConfig, renderer *Renderer) *SMTPNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewSMTPNotifierWithSender(dialer, cfg.From, cfg.Timeout, renderer)
}

// NewSMTPNotifierWithSender builds a notifier around an existing sender.
func NewSMTPNotifierWithSender(sender Sender, from string, timeout time.Duration, renderer *Renderer) *SMTPNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPNotifier{renderer: renderer, sender: sender, from: from, timeout: timeout}
}

func (n *SMTPNotifier) SendVerification(ctx context.Context, to, name, token string) error {
	msg, err := n.renderer.Verification(to, name, token)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, to, name, token string) error {
	msg, err := n.renderer.PasswordReset(to, name, token)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SMTPNotifier) SendWelcome(ctx context.Context, to, name string) error {
	msg, err := n.renderer.Welcome(to, name)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

// send gives up after the configured timeout. gomail has no context support,
// so an abandoned dial finishes in the background.
func (n *SMTPNotifier) send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.sender.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send %s email: %w", msg.Kind, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %s email: %w", msg.Kind, ctx.Err())
	}
}
