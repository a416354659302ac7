package notify

import (
	"context"

	"personapilot/internal/logging"
)

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	renderer  *Renderer
	logger    logging.Logger
	showLinks bool
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier for environments without SMTP. Links
// carry one-time tokens and are only logged when showLinks is set.
func NewLogNotifier(renderer *Renderer, logger logging.Logger, showLinks bool) *LogNotifier {
	return &LogNotifier{renderer: renderer, logger: logger, showLinks: showLinks}
}

func (n *LogNotifier) SendVerification(ctx context.Context, to, name, token string) error {
	msg, err := n.renderer.Verification(to, name, token)
	if err != nil {
		return err
	}
	n.log(ctx, msg)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, to, name, token string) error {
	msg, err := n.renderer.PasswordReset(to, name, token)
	if err != nil {
		return err
	}
	n.log(ctx, msg)
	return nil
}

func (n *LogNotifier) SendWelcome(ctx context.Context, to, name string) error {
	msg, err := n.renderer.Welcome(to, name)
	if err != nil {
		return err
	}
	n.log(ctx, msg)
	return nil
}

func (n *LogNotifier) log(ctx context.Context, msg *Message) {
	link := "[redacted]"
	if n.showLinks {
		link = msg.Link
	}
	n.logger.Info(ctx, "email not sent: smtp disabled", "kind", msg.Kind, "to", msg.To, "subject", msg.Subject, "link", link)
}
