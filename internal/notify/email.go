package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"stock-notifier/internal/config"
	"stock-notifier/internal/models"
)

// SendFunc submits a message to an SMTP server. It must give up once ctx
// is done.
type SendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// sendTimeout bounds an SMTP session whose context has no deadline.
const sendTimeout = 30 * time.Second

// EmailNotifier sends notifications via email using SMTP.
type EmailNotifier struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	to       []string
	enabled  bool
	send     SendFunc
	now      func() time.Time
}

// NewEmailNotifier creates a new EmailNotifier.
// Without a recipient the alert is mailed to the sender address.
func NewEmailNotifier(cfg config.EmailConfig, creds config.SMTPCredentials) *EmailNotifier {
	to := splitAddresses(cfg.To)
	if len(to) == 0 && cfg.From != "" {
		to = []string{cfg.From}
	}
	e := &EmailNotifier{
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: creds.Username,
		password: creds.Password,
		from:     cfg.From,
		to:       to,
		enabled:  cfg.Enabled && cfg.SMTPHost != "" && cfg.From != "",
		now:      time.Now,
	}
	if e.smtpPort == 0 {
		e.smtpPort = 587
	}
	e.send = e.defaultSend
	return e
}

func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Name returns the name of the notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// Enabled returns whether the notifier is enabled.
func (e *EmailNotifier) Enabled() bool {
	return e.enabled
}

// Recipients returns the addresses alerts are sent to.
func (e *EmailNotifier) Recipients() []string {
	return append([]string(nil), e.to...)
}

// Notify sends the alert email.
func (e *EmailNotifier) Notify(ctx context.Context, ticker string, snap models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if e.username != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	}

	addr := net.JoinHostPort(e.smtpHost, fmt.Sprint(e.smtpPort))
	return e.send(ctx, addr, auth, e.from, e.to, e.BuildMessage(ticker, snap))
}

// BuildMessage renders the RFC 5322 message for an alert.
func (e *EmailNotifier) BuildMessage(ticker string, snap models.Snapshot) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + e.from + "\r\n")
	sb.WriteString("To: " + strings.Join(e.to, ", ") + "\r\n")
	sb.WriteString("Subject: " + Subject(ticker) + "\r\n")
	sb.WriteString("Date: " + e.now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(Message(snap), "\n", "\r\n"))
	sb.WriteString("\r\n")
	return []byte(sb.String())
}

// dial connects to addr, with implicit TLS on port 465.
func (e *EmailNotifier) dial(ctx context.Context, addr string) (net.Conn, error) {
	netDialer := &net.Dialer{Timeout: sendTimeout}
	if e.smtpPort == 465 {
		dialer := &tls.Dialer{
			NetDialer: netDialer,
			Config:    &tls.Config{ServerName: e.smtpHost},
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("TLS dial failed: %w", err)
		}
		return conn, nil
	}

	conn, err := netDialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("SMTP dial failed: %w", err)
	}
	return conn, nil
}

// defaultSend runs one SMTP session. Every read and write shares the
// context deadline, and cancelling ctx closes the connection. Plain
// connections are upgraded with STARTTLS when the server offers it.
func (e *EmailNotifier) defaultSend(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := e.dial(ctx, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(sendTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting SMTP deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client, err := smtp.NewClient(conn, e.smtpHost)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	if e.smtpPort != 465 {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: e.smtpHost}); err != nil {
				return fmt.Errorf("SMTP STARTTLS failed: %w", err)
			}
		}
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); !ok {
			return fmt.Errorf("SMTP server %s does not support AUTH", e.smtpHost)
		}
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT command failed: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}
