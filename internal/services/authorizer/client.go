// Package authorizer talks to the external service that approves or denies
// transfers. Every failure mode is a denial.
package authorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"simplepay/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "simplepay-authorizer/1.0"

	maxResponseBytes = 64 << 10
)

type Config struct {
	URL       string
	Token     string
	Timeout   time.Duration
	UserAgent string
}

// Request identifies the transfer being authorized. TransferID is only used
// for the call log and is not sent.
type Request struct {
	TransferID string
	PayerID    uint
	PayeeID    uint
	Amount     decimal.Decimal
}

type payload struct {
	PayerID uint        `json:"payerId"`
	PayeeID uint        `json:"payeeId"`
	Amount  json.Number `json:"amount"`
}

// OutcomeRecorder persists the outcome of each call.
type OutcomeRecorder interface {
	Record(ctx context.Context, transferID string, outcome models.AuthorizationOutcome) error
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	recorder   OutcomeRecorder
}

// NewClient creates an authorizer client. recorder may be nil.
func NewClient(cfg Config, recorder OutcomeRecorder) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		recorder:   recorder,
	}
}

// Authorize reports whether the transfer is approved. It never errors; any
// failure to get a clear approval yields false.
func (c *Client) Authorize(ctx context.Context, payerID, payeeID uint, amount decimal.Decimal) bool {
	return c.Evaluate(ctx, Request{PayerID: payerID, PayeeID: payeeID, Amount: amount}).Allowed
}

// Evaluate performs a single authorization call and explains its outcome.
func (c *Client) Evaluate(ctx context.Context, req Request) models.AuthorizationOutcome {
	body, _ := json.Marshal(payload{
		PayerID: req.PayerID,
		PayeeID: req.PayeeID,
		Amount:  json.Number(req.Amount.StringFixed(2)),
	})

	outcome := c.call(ctx, body)

	event := log.Warn()
	if outcome.Allowed {
		event = log.Debug()
	}
	event.
		Str("transfer_id", req.TransferID).
		Uint("payer_id", req.PayerID).
		Uint("payee_id", req.PayeeID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("reason", outcome.Reason).
		Int("status_code", outcome.StatusCode).
		Str("response", outcome.ResponseBody).
		Str("error", outcome.ErrorDetail).
		Msg("authorization evaluated")

	if c.recorder != nil && req.TransferID != "" {
		if err := c.recorder.Record(ctx, req.TransferID, outcome); err != nil {
			log.Error().Err(err).Str("transfer_id", req.TransferID).Msg("failed to record authorization outcome")
		}
	}
	return outcome
}

func (c *Client) call(ctx context.Context, body []byte) models.AuthorizationOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return denied(models.ReasonTransportError, fmt.Sprintf("building request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return denied(models.ReasonTimeout, err.Error())
		}
		return denied(models.ReasonTransportError, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		reason := models.ReasonTransportError
		if isTimeout(err) {
			reason = models.ReasonTimeout
		}
		outcome := denied(reason, fmt.Sprintf("reading response: %v", err))
		outcome.StatusCode = resp.StatusCode
		return outcome
	}

	outcome := decide(resp.StatusCode, raw)
	outcome.StatusCode = resp.StatusCode
	outcome.ResponseBody = string(raw)
	return outcome
}

// decide maps a completed HTTP exchange to an outcome. Only a 2xx response
// carrying a truthy authorization field is an approval.
func decide(status int, raw []byte) models.AuthorizationOutcome {
	trimmed := bytes.TrimSpace(raw)
	ok := status >= 200 && status < 300

	if len(trimmed) == 0 {
		if !ok {
			return denied(models.ReasonBadStatus, fmt.Sprintf("unexpected status %d", status))
		}
		return denied(models.ReasonEmptyBody, "empty response body")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(trimmed, &doc); err != nil || doc == nil {
		if !ok {
			return denied(models.ReasonBadStatus, fmt.Sprintf("unexpected status %d", status))
		}
		detail := "response is not a JSON object"
		if err != nil {
			detail = err.Error()
		}
		return denied(models.ReasonMalformedBody, detail)
	}

	value, found := authorizationField(doc)
	switch {
	case !ok && found && !truthy(value):
		return denied(models.ReasonDenied, fmt.Sprintf("denied with status %d", status))
	case !ok:
		return denied(models.ReasonBadStatus, fmt.Sprintf("unexpected status %d", status))
	case !found:
		return denied(models.ReasonMissingField, "authorization field not present")
	case !truthy(value):
		return denied(models.ReasonDenied, "")
	}
	return models.AuthorizationOutcome{Allowed: true, Reason: models.ReasonAuthorized}
}

// authorizationField looks for "authorization" at the top level, then under
// "data".
func authorizationField(doc map[string]interface{}) (interface{}, bool) {
	if v, ok := doc["authorization"]; ok {
		return v, true
	}
	if data, ok := doc["data"].(map[string]interface{}); ok {
		if v, ok := data["authorization"]; ok {
			return v, true
		}
	}
	return nil, false
}

func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(strings.TrimSpace(val), "true")
	case float64:
		return val == 1
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func denied(reason, detail string) models.AuthorizationOutcome {
	return models.AuthorizationOutcome{Allowed: false, Reason: reason, ErrorDetail: detail}
}
