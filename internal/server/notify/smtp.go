package notify

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// Seams for tests.
var (
	newMailClient = mail.NewClient
	dialAndSend   = func(ctx context.Context, c *mail.Client, msgs ...*mail.Msg) error {
		return c.DialAndSendWithContext(ctx, msgs...)
	}
)

// SMTPConfig describes the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Secure dials with implicit TLS (usually port 465). Otherwise STARTTLS
	// is used when the relay offers it.
	Secure  bool
	Timeout time.Duration
}

type SMTPNotifier struct {
	host string
	addr string
	from string
	opts []mail.Option
}

// NewSMTPNotifier validates c by building a client once. PLAIN auth is used
// when User is not empty.
func NewSMTPNotifier(c SMTPConfig) (*SMTPNotifier, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []mail.Option{mail.WithPort(c.Port), mail.WithTimeout(timeout)}
	if c.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if c.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.User),
			mail.WithPassword(c.Password),
		)
	}

	if _, err := newMailClient(c.Host, opts...); err != nil {
		return nil, fmt.Errorf("error configuring smtp client: %w", err)
	}

	return &SMTPNotifier{
		host: c.Host,
		addr: net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		from: c.From,
		opts: opts,
	}, nil
}

// Deliver sends one message over a fresh connection. It returns ctx.Err()
// as soon as ctx is done, even if the relay has not answered yet.
func (n *SMTPNotifier) Deliver(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newMessage(n.from, to, subject, html, time.Now())
	if err != nil {
		return err
	}

	// mail.Client keeps connection state, so one per delivery.
	client, err := newMailClient(n.host, n.opts...)
	if err != nil {
		return fmt.Errorf("error configuring smtp client: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- dialAndSend(ctx, client, msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", n.addr, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
