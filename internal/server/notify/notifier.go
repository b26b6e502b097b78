// Package notify delivers account e-mails (activation and password reset).
//
// A Notifier only transports an already rendered message. Messages renders
// the HTML bodies with links pointing at the frontend.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Notifier delivers a rendered HTML message to a recipient.
type Notifier interface {
	Deliver(ctx context.Context, to, subject, html string) error
}

const (
	SubjectActivation = "Account Activation"
	SubjectReset      = "Password Reset"

	senderName = "URL Shortener"
)

var (
	activationTmpl = template.Must(template.New("activation").Parse(
		`<h1>Account Activation</h1><p>Please click the link below to activate your account:</p><a href="{{.Link}}">{{.Link}}</a>`))
	resetTmpl = template.Must(template.New("reset").Parse(
		`<h1>Password Reset</h1><p>Please click the link below to reset your password:</p><a href="{{.Link}}">{{.Link}}</a>`))
)

// Messages renders account e-mails against a frontend base URL.
type Messages struct {
	frontendURL string
}

func NewMessages(frontendURL string) *Messages {
	return &Messages{frontendURL: strings.TrimRight(frontendURL, "/")}
}

func (m *Messages) ActivationLink(token string) string {
	return m.frontendURL + "/activate/" + token
}

func (m *Messages) ResetLink(token string) string {
	return m.frontendURL + "/reset-password/" + token
}

func (m *Messages) Activation(token string) (string, error) {
	return render(activationTmpl, m.ActivationLink(token))
}

func (m *Messages) Reset(token string) (string, error) {
	return render(resetTmpl, m.ResetLink(token))
}

func render(t *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("error rendering %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// newMessage builds a single-recipient HTML message sent as senderName <from>.
func newMessage(from, to, subject, html string, date time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(senderName, from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetDateWithValue(date)
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextHTML, html)
	return m, nil
}
