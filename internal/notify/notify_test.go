package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"personapilot/internal/logging"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("https://app.example.com/")
	require.NoError(t, err)
	return r
}

func TestRenderer_Links(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		name     string
		render   func() (*Message, error)
		wantLink string
		wantSubj string
	}{
		{"verification", func() (*Message, error) { return r.Verification("a@b.com", "Ada", "tok") }, "https://app.example.com/verify-email/tok", "Verify Your Email - PersonaPilot"},
		{"reset", func() (*Message, error) { return r.PasswordReset("a@b.com", "Ada", "tok") }, "https://app.example.com/reset-password/tok", "Reset Your Password - PersonaPilot"},
		{"welcome", func() (*Message, error) { return r.Welcome("a@b.com", "Ada") }, "https://app.example.com/dashboard", "Welcome to PersonaPilot!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := tt.render()
			require.NoError(t, err)
			assert.Equal(t, tt.wantLink, msg.Link)
			assert.Equal(t, tt.wantSubj, msg.Subject)
			assert.Contains(t, msg.HTML, tt.wantLink)
			assert.Contains(t, msg.HTML, "Hi Ada,")
		})
	}
}

func TestRenderer_EscapesName(t *testing.T) {
	msg, err := newTestRenderer(t).Welcome("a@b.com", "<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>alert(1)</script>")
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m...)
	return s.err
}

func TestSMTPNotifier_Send(t *testing.T) {
	sender := &fakeSender{}
	n := NewSMTPNotifierWithSender(sender, "PersonaPilot <noreply@personapilot.io>", time.Second, newTestRenderer(t))

	require.NoError(t, n.SendPasswordReset(context.Background(), "a@b.com", "Ada", "reset-token"))

	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Reset Your Password - PersonaPilot"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "reset-password/reset-token")
}

func TestSMTPNotifier_Failures(t *testing.T) {
	t.Run("relay error", func(t *testing.T) {
		n := NewSMTPNotifierWithSender(&fakeSender{err: errors.New("535 auth failed")}, "from@x", time.Second, newTestRenderer(t))
		err := n.SendVerification(context.Background(), "a@b.com", "Ada", "tok")
		assert.ErrorContains(t, err, "535 auth failed")
	})

	t.Run("timeout", func(t *testing.T) {
		n := NewSMTPNotifierWithSender(&fakeSender{delay: 200 * time.Millisecond}, "from@x", 20*time.Millisecond, newTestRenderer(t))
		err := n.SendWelcome(context.Background(), "a@b.com", "Ada")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(newTestRenderer(t), logging.New(&buf, "json", "info"), true)

	require.NoError(t, n.SendVerification(context.Background(), "a@b.com", "Ada", "tok"))

	assert.Contains(t, buf.String(), `"link":"https://app.example.com/verify-email/tok"`)
	assert.Contains(t, buf.String(), `"kind":"verification"`)
}

func TestLogNotifier_HidesTokensWhenLinksDisabled(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(newTestRenderer(t), logging.New(&buf, "json", "info"), false)
	ctx := context.Background()

	require.NoError(t, n.SendVerification(ctx, "a@b.com", "Ada", "secret-verify-token"))
	require.NoError(t, n.SendPasswordReset(ctx, "a@b.com", "Ada", "secret-reset-token"))

	assert.NotContains(t, buf.String(), "secret-verify-token")
	assert.NotContains(t, buf.String(), "secret-reset-token")
	assert.Contains(t, buf.String(), `"link":"[redacted]"`)
	assert.Contains(t, buf.String(), `"kind":"reset"`)
}

type recordingNotifier struct {
	mu      sync.Mutex
	sent    []string
	err     error
	started chan struct{}
	release chan struct{}
}

func (n *recordingNotifier) record(kind string) error {
	if n.started != nil {
		n.started <- struct{}{}
		<-n.release
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, kind)
	return n.err
}

func (n *recordingNotifier) SendVerification(context.Context, string, string, string) error {
	return n.record("verification")
}

func (n *recordingNotifier) SendPasswordReset(context.Context, string, string, string) error {
	return n.record("reset")
}

func (n *recordingNotifier) SendWelcome(context.Context, string, string) error {
	return n.record("welcome")
}

func (n *recordingNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	rec := &recordingNotifier{}
	d := NewDispatcher(rec, logging.Nop(), 10, time.Second)
	ctx := context.Background()

	require.NoError(t, d.SendVerification(ctx, "a@b.com", "Ada", "tok"))
	require.NoError(t, d.SendWelcome(ctx, "a@b.com", "Ada"))
	require.NoError(t, d.SendPasswordReset(ctx, "a@b.com", "Ada", "tok"))

	require.NoError(t, d.Close(ctx))
	assert.Equal(t, []string{"verification", "welcome", "reset"}, rec.Sent())

	assert.ErrorIs(t, d.SendWelcome(ctx, "a@b.com", "Ada"), ErrDispatcherClosed)
	assert.NoError(t, d.Close(ctx), "close is idempotent")
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	rec := &recordingNotifier{started: make(chan struct{}, 1), release: make(chan struct{})}
	d := NewDispatcher(rec, logging.Nop(), 1, time.Second)
	ctx := context.Background()

	require.NoError(t, d.SendWelcome(ctx, "first@b.com", "A"))
	<-rec.started

	require.NoError(t, d.SendWelcome(ctx, "second@b.com", "B"))
	assert.ErrorIs(t, d.SendWelcome(ctx, "third@b.com", "C"), ErrQueueFull)

	close(rec.release)
	require.NoError(t, d.Close(ctx))
	assert.Len(t, rec.Sent(), 2)
}

func TestDispatcher_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingNotifier{err: errors.New("smtp down")}
	d := NewDispatcher(rec, logging.New(&buf, "json", "info"), 10, time.Second)

	require.NoError(t, d.SendWelcome(context.Background(), "a@b.com", "Ada"))
	require.NoError(t, d.Close(context.Background()))

	assert.Contains(t, buf.String(), "send email failed")
	assert.Contains(t, buf.String(), "smtp down")
}
