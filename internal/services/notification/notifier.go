package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"simplepay/internal/models"
)

// Message is the body sent to the notify endpoint.
type Message struct {
	EventID    string `json:"event_id"`
	TransferID string `json:"transfer_id"`
	PayerID    uint   `json:"payer_id"`
	PayeeID    uint   `json:"payee_id"`
	Amount     string `json:"amount"`
	Message    string `json:"message"`
}

// HTTPNotifier posts events to the external notify endpoint. It is a Sink.
type HTTPNotifier struct {
	url    string
	client *http.Client
}

func NewHTTPNotifier(url string, timeout time.Duration) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *HTTPNotifier) Deliver(ctx context.Context, event models.TransferReceivedEvent) error {
	body, err := json.Marshal(Render(event))
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "simplepay-notifier/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("notify endpoint returned status %d", resp.StatusCode)
}

// Render builds the payee-facing message of an event.
func Render(event models.TransferReceivedEvent) Message {
	amount := event.Amount.StringFixed(2)
	return Message{
		EventID:    event.EventID,
		TransferID: event.TransferID,
		PayerID:    event.PayerID,
		PayeeID:    event.PayeeID,
		Amount:     amount,
		Message:    fmt.Sprintf("You received %s from account %d", amount, event.PayerID),
	}
}
