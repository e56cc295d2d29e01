// Package mail is a fluent SMTP mailer.
//
//	err := mail.To(order.User.Email).
//	    Subject("Your order ORD-1A2B3C4D").
//	    Template(confirmationTmpl, order).
//	    Send()
package mail

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/shopease/config"
)

// ErrNotConfigured is returned by Send when MAIL_USERNAME is empty.
var ErrNotConfigured = errors.New("mail: MAIL_USERNAME not configured")

// SMTP holds connection settings.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@shopease.local"),
		FromName: config.Get("MAIL_FROM_NAME", config.AppName()),
	}
}

// Configured reports whether SMTP credentials are present.
func Configured() bool { return defaultSMTP().Username != "" }

// SendFunc delivers a raw message. It defaults to smtp.SendMail; tests
// replace it.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var Transport SendFunc = smtp.SendMail

// Message is a fluent builder for one email.
type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
	err     error
	cfg     SMTP
}

// To starts a message to addresses.
func To(addresses ...string) *Message {
	return &Message{to: addresses, isHTML: true, cfg: defaultSMTP()}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body, m.isHTML = html, true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body, m.isHTML = text, false
	return m
}

// Template renders t with data as the HTML body. Render errors surface
// from Send.
func (m *Message) Template(t *template.Template, data interface{}) *Message {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", t.Name(), err)
		return m
	}
	m.body, m.isHTML = buf.String(), true
	return m
}

// UseConfig overrides the SMTP settings for this message.
func (m *Message) UseConfig(cfg SMTP) *Message {
	m.cfg = cfg
	return m
}

// Send delivers the message. Port 465 uses implicit TLS; other ports go
// through smtp.SendMail (STARTTLS when offered).
func (m *Message) Send() error {
	if m.err != nil {
		return m.err
	}
	if m.cfg.Username == "" {
		return ErrNotConfigured
	}
	if len(m.to) == 0 {
		return errors.New("mail: no recipients")
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	raw := m.Raw()

	if m.cfg.Port == "465" {
		return sendTLS(addr, m.cfg.Host, auth, m.cfg.From, m.to, raw)
	}
	return Transport(addr, auth, m.cfg.From, m.to, raw)
}

func sendTLS(addr, host string, auth smtp.Auth, from string, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

// Raw renders the RFC 5322 message.
func (m *Message) Raw() []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(m.subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
	b.WriteString(m.body)
	return []byte(b.String())
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
