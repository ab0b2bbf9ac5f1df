package botport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/radieske/arb-alert-core/pkg/contracts/messages"
)

// WebhookSender entrega mensagens ao bridge de chat via HTTP.
type WebhookSender struct {
	BaseURL string
	HTTP    *http.Client
}

func NewWebhookSender(base string) *WebhookSender {
	return &WebhookSender{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

type sendRequest struct {
	UserID  string           `json:"user_id"`
	Message messages.Message `json:"message"`
}

func (c *WebhookSender) Send(ctx context.Context, userID string, m messages.Message) error {
	body, _ := json.Marshal(sendRequest{UserID: userID, Message: m})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusForbidden:
		return ErrUserBlocked
	case res.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case res.StatusCode >= 300:
		return fmt.Errorf("bridge send http %d", res.StatusCode)
	}
	return nil
}
