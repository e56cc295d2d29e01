// Package notification delivers messages over mail and Slack.
//
// A notification implements one or both channel interfaces:
//
//	type OrderPlaced struct{ Order *models.Order }
//	func (n OrderPlaced) ToMail() notification.MailData  { ... }
//	func (n OrderPlaced) ToSlack() notification.SlackData { ... }
//
// Channels are picked at send time: mail when MAIL_USERNAME is configured,
// slack when SLACK_WEBHOOK_URL is. With neither, Send logs and returns nil.
package notification

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/shashiranjanraj/shopease/config"
	httpc "github.com/shashiranjanraj/shopease/pkg/http"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/mail"
)

const (
	ChannelMail  = "mail"
	ChannelSlack = "slack"
)

// MailData is the mail channel payload. Template wins over Body when set.
type MailData struct {
	To       string
	Subject  string
	Body     string
	Template *template.Template
	Data     interface{}
}

// SlackData is an incoming-webhook payload.
type SlackData struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	Color  string `json:"color,omitempty"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

type Mailable interface{ ToMail() MailData }

type Slackable interface{ ToSlack() SlackData }

// Channels returns the channels n would be sent through right now.
func Channels(n interface{}) []string {
	var out []string
	if _, ok := n.(Mailable); ok && mail.Configured() {
		out = append(out, ChannelMail)
	}
	if _, ok := n.(Slackable); ok && slackWebhook() != "" {
		out = append(out, ChannelSlack)
	}
	return out
}

func slackWebhook() string { return config.Get("SLACK_WEBHOOK_URL", "") }

// Send delivers n to address through every available channel. Channel
// failures are joined into the returned error.
func Send(ctx context.Context, address string, n interface{}) error {
	channels := Channels(n)
	if len(channels) == 0 {
		logger.WithCtx(ctx).Info("notification: no channel configured, skipped", "type", fmt.Sprintf("%T", n))
		return nil
	}

	var errs []error
	for _, ch := range channels {
		var err error
		switch ch {
		case ChannelMail:
			err = sendMail(address, n.(Mailable).ToMail())
		case ChannelSlack:
			err = sendSlack(ctx, n.(Slackable).ToSlack())
		}
		if err != nil {
			logger.WithCtx(ctx).Error("notification: channel failed", "channel", ch, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
		}
	}
	return errors.Join(errs...)
}

func sendMail(address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}
	if to == "" {
		return errors.New("notification: no mail recipient")
	}

	m := mail.To(to).Subject(d.Subject)
	if d.Template != nil {
		m = m.Template(d.Template, d.Data)
	} else {
		m = m.Body(d.Body)
	}
	return m.Send()
}

func sendSlack(ctx context.Context, d SlackData) error {
	resp, err := httpc.Post(ctx, slackWebhook()).
		Body(d).
		Timeout(5*time.Second).
		Retry(3, time.Second).
		Send()
	if err != nil {
		return err
	}
	return resp.Throw()
}
