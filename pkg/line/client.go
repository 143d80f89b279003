// Package line sends text messages through the LINE Messaging API push endpoint.
package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

const (
	// MaxMessages is the number of messages LINE accepts in one push request.
	MaxMessages = 5
	// MaxTextLength is the longest text message LINE accepts, in characters.
	MaxTextLength = 5000
)

// Client pushes messages with a channel access token.
type Client struct {
	api *messaging_api.MessagingApiAPI
}

// NewClient builds a Messaging API client. opts are passed through to the SDK, tests
// use messaging_api.WithEndpoint.
func NewClient(token string, opts ...messaging_api.MessagingApiAPIOption) (*Client, error) {
	api, err := messaging_api.NewMessagingApiAPI(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("line: unable to create messaging client: %w", err)
	}
	return &Client{api: api}, nil
}

// Push sends texts to the recipient, MaxMessages per request. It makes no request
// when texts is empty.
func (c *Client) Push(ctx context.Context, to string, texts []string) error {
	api := c.api.WithContext(ctx)
	for start := 0; start < len(texts); start += MaxMessages {
		end := min(start+MaxMessages, len(texts))
		req := &messaging_api.PushMessageRequest{To: to}
		for _, text := range texts[start:end] {
			req.Messages = append(req.Messages, &messaging_api.TextMessage{Text: Truncate(text)})
		}
		if _, err := api.PushMessage(req, ""); err != nil {
			return fmt.Errorf("line: push failed: %w", err)
		}
	}
	return nil
}

// Truncate cuts text to MaxTextLength characters.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text
	}
	return string(runes[:MaxTextLength])
}
