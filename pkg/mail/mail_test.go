package mail_test

import (
	"html/template"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/pkg/mail"
)

var cfg = mail.SMTP{Host: "smtp.test", Port: "587", Username: "u", Password: "p", From: "shop@test", FromName: "Shop"}

func TestSendRendersTemplate(t *testing.T) {
	var gotTo []string
	var gotMsg string
	mail.Transport = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.test:587", addr)
		assert.Equal(t, "shop@test", from)
		gotTo, gotMsg = to, string(msg)
		return nil
	}
	t.Cleanup(func() { mail.Transport = smtp.SendMail })

	tmpl := template.Must(template.New("c").Parse(`<p>Order {{.Number}}</p>`))
	err := mail.To("buyer@test").
		UseConfig(cfg).
		Subject("Order\r\nBcc: evil@test").
		Template(tmpl, map[string]string{"Number": "ORD-1"}).
		Send()
	require.NoError(t, err)

	assert.Equal(t, []string{"buyer@test"}, gotTo)
	assert.Contains(t, gotMsg, "<p>Order ORD-1</p>")
	assert.Contains(t, gotMsg, "Content-Type: text/html")
	assert.False(t, strings.Contains(gotMsg, "\r\nBcc:"), "subject must not inject headers")
}

func TestSendWithoutCredentials(t *testing.T) {
	err := mail.To("a@test").UseConfig(mail.SMTP{}).Text("x").Send()
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}

func TestTemplateErrorSurfaces(t *testing.T) {
	tmpl := template.Must(template.New("bad").Parse(`{{template "nope"}}`))
	err := mail.To("a@test").UseConfig(cfg).Template(tmpl, map[string]interface{}{}).Send()
	assert.ErrorContains(t, err, "render bad")
}
