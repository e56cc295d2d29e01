package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/notification"
)

type lowStock struct{ count int }

func (n lowStock) ToSlack() notification.SlackData {
	return notification.SlackData{Text: "low stock", Attachments: []notification.SlackAttachment{{Color: "warning"}}}
}

type mailOnly struct{}

func (mailOnly) ToMail() notification.MailData { return notification.MailData{Subject: "hi", Body: "x"} }

func TestNoChannelIsNoop(t *testing.T) {
	config.Set("SLACK_WEBHOOK_URL", "")
	config.Set("MAIL_USERNAME", "")

	assert.Empty(t, notification.Channels(lowStock{}))
	assert.NoError(t, notification.Send(context.Background(), "", lowStock{}))
	assert.NoError(t, notification.Send(context.Background(), "a@test", mailOnly{}))
}

func TestSlackDelivery(t *testing.T) {
	var got notification.SlackData
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	config.Set("SLACK_WEBHOOK_URL", srv.URL)
	t.Cleanup(func() { config.Set("SLACK_WEBHOOK_URL", "") })

	assert.Equal(t, []string{notification.ChannelSlack}, notification.Channels(lowStock{}))
	require.NoError(t, notification.Send(context.Background(), "", lowStock{count: 3}))
	assert.Equal(t, "low stock", got.Text)
	assert.Equal(t, "warning", got.Attachments[0].Color)
}

func TestSlackFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	config.Set("SLACK_WEBHOOK_URL", srv.URL)
	t.Cleanup(func() { config.Set("SLACK_WEBHOOK_URL", "") })

	err := notification.Send(context.Background(), "", lowStock{})
	assert.ErrorContains(t, err, "slack")
}
