// Package notify delivers account emails: verification, password reset and welcome.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Notifier sends account emails.
type Notifier interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
	SendWelcome(ctx context.Context, to, name string) error
}

//go:embed templates/*.html
var templateFS embed.FS

// Kind names a message template.
type Kind string

const (
	KindVerification Kind = "verification"
	KindReset        Kind = "reset"
	KindWelcome      Kind = "welcome"
)

// Message is a rendered email.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	Link    string
	HTML    string
}

type templateData struct {
	Heading string
	Name    string
	Link    string
	Year    int
}

var subjects = map[Kind]struct{ subject, heading string }{
	KindVerification: {"Verify Your Email - PersonaPilot", "Welcome to PersonaPilot!"},
	KindReset:        {"Reset Your Password - PersonaPilot", "Password Reset Request"},
	KindWelcome:      {"Welcome to PersonaPilot!", "Welcome to PersonaPilot!"},
}

// Renderer builds messages with links into the frontend.
type Renderer struct {
	frontendURL string
	templates   map[Kind]*template.Template
	now         func() time.Time
}

// NewRenderer parses the embedded templates.
func NewRenderer(frontendURL string) (*Renderer, error) {
	r := &Renderer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		templates:   make(map[Kind]*template.Template, len(subjects)),
		now:         time.Now,
	}
	for kind := range subjects {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", kind, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

// Verification renders the email verification message.
func (r *Renderer) Verification(to, name, token string) (*Message, error) {
	return r.render(KindVerification, to, name, r.frontendURL+"/verify-email/"+token)
}

// PasswordReset renders the password reset message.
func (r *Renderer) PasswordReset(to, name, token string) (*Message, error) {
	return r.render(KindReset, to, name, r.frontendURL+"/reset-password/"+token)
}

// Welcome renders the welcome message.
func (r *Renderer) Welcome(to, name string) (*Message, error) {
	return r.render(KindWelcome, to, name, r.frontendURL+"/dashboard")
}

func (r *Renderer) render(kind Kind, to, name, link string) (*Message, error) {
	meta := subjects[kind]
	var buf bytes.Buffer
	err := r.templates[kind].ExecuteTemplate(&buf, "layout", templateData{
		Heading: meta.heading,
		Name:    name,
		Link:    link,
		Year:    r.now().Year(),
	})
	if err != nil {
		return nil, fmt.Errorf("render %s email: %w", kind, err)
	}
	return &Message{Kind: kind, To: to, Subject: meta.subject, Link: link, HTML: buf.String()}, nil
}
