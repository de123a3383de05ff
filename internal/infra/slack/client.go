package slack

import (
	"context"
	"time"

	goslack "github.com/slack-go/slack"
)

// Client posts notification text to a configured Slack incoming webhook.
type Client struct {
	webhookURL string
	timeout    time.Duration
}

// NewClient builds a webhook-backed Client. timeout bounds each post.
func NewClient(webhookURL string, timeout time.Duration) *Client {
	return &Client{webhookURL: webhookURL, timeout: timeout}
}

// SendMessage posts message as the webhook's text payload.
func (c *Client) SendMessage(message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return goslack.PostWebhookContext(ctx, c.webhookURL, &goslack.WebhookMessage{Text: message})
}
