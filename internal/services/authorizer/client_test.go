package authorizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"simplepay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, transferID string, outcome models.AuthorizationOutcome) error {
	args := m.Called(ctx, transferID, outcome)
	return args.Error(0)
}

func respondWith(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Evaluate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		allowed bool
		reason  string
	}{
		{name: "nested success", status: 200, body: `{"status":"success","data":{"authorization":true}}`, allowed: true, reason: models.ReasonAuthorized},
		{name: "top level true", status: 200, body: `{"authorization":true}`, allowed: true, reason: models.ReasonAuthorized},
		{name: "string true", status: 200, body: `{"authorization":"true"}`, allowed: true, reason: models.ReasonAuthorized},
		{name: "numeric one", status: 200, body: `{"data":{"authorization":1}}`, allowed: true, reason: models.ReasonAuthorized},
		{name: "explicit false", status: 200, body: `{"data":{"authorization":false}}`, reason: models.ReasonDenied},
		{name: "string yes", status: 200, body: `{"authorization":"yes"}`, reason: models.ReasonDenied},
		{name: "null value", status: 200, body: `{"authorization":null}`, reason: models.ReasonDenied},
		{name: "forbidden with denial", status: 403, body: `{"status":"fail","data":{"authorization":false}}`, reason: models.ReasonDenied},
		{name: "server error claiming approval", status: 500, body: `{"authorization":true}`, reason: models.ReasonBadStatus},
		{name: "server error without body", status: 503, body: "", reason: models.ReasonBadStatus},
		{name: "empty body", status: 200, body: "  ", reason: models.ReasonEmptyBody},
		{name: "malformed body", status: 200, body: `{"authorization":`, reason: models.ReasonMalformedBody},
		{name: "json array", status: 200, body: `[true]`, reason: models.ReasonMalformedBody},
		{name: "missing field", status: 200, body: `{"status":"success","data":{}}`, reason: models.ReasonMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respondWith(tt.status, tt.body))
			defer srv.Close()

			client := NewClient(Config{URL: srv.URL}, nil)
			outcome := client.Evaluate(context.Background(), Request{PayerID: 1, PayeeID: 2, Amount: decimal.RequireFromString("100.00")})

			assert.Equal(t, tt.allowed, outcome.Allowed)
			assert.Equal(t, tt.reason, outcome.Reason)
			assert.Equal(t, tt.status, outcome.StatusCode)
		})
	}
}

func TestClient_SendsPayloadAndHeaders(t *testing.T) {
	var got map[string]interface{}
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"authorization":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, Token: "secret"}, nil)
	assert.True(t, client.Authorize(context.Background(), 4, 15, decimal.RequireFromString("100.5")))

	assert.Equal(t, float64(4), got["payerId"])
	assert.Equal(t, float64(15), got["payeeId"])
	assert.Equal(t, 100.5, got["amount"])
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, DefaultUserAgent, headers.Get("User-Agent"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
}

func TestClient_OmitsAuthorizationHeaderWithoutToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"authorization":true}`))
	}))
	defer srv.Close()

	NewClient(Config{URL: srv.URL}, nil).Authorize(context.Background(), 1, 2, decimal.NewFromInt(1))
	assert.Empty(t, auth)
}

func TestClient_TimeoutIsDenial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"authorization":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	outcome := client.Evaluate(context.Background(), Request{PayerID: 1, PayeeID: 2, Amount: decimal.NewFromInt(1)})

	assert.False(t, outcome.Allowed)
	assert.Equal(t, models.ReasonTimeout, outcome.Reason)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_UnreachableIsDenial(t *testing.T) {
	srv := httptest.NewServer(respondWith(200, `{"authorization":true}`))
	url := srv.URL
	srv.Close()

	outcome := NewClient(Config{URL: url}, nil).Evaluate(context.Background(), Request{PayerID: 1, PayeeID: 2, Amount: decimal.NewFromInt(1)})
	assert.False(t, outcome.Allowed)
	assert.Equal(t, models.ReasonTransportError, outcome.Reason)
	assert.NotEmpty(t, outcome.ErrorDetail)
}

func TestClient_CancelledContextIsDenial(t *testing.T) {
	srv := httptest.NewServer(respondWith(200, `{"authorization":true}`))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, NewClient(Config{URL: srv.URL}, nil).Authorize(ctx, 1, 2, decimal.NewFromInt(1)))
}

func TestClient_RecordsOutcome(t *testing.T) {
	srv := httptest.NewServer(respondWith(200, `{"data":{"authorization":false}}`))
	defer srv.Close()

	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, "t-1", mock.MatchedBy(func(o models.AuthorizationOutcome) bool {
		return !o.Allowed && o.Reason == models.ReasonDenied && o.StatusCode == 200
	})).Return(nil)

	client := NewClient(Config{URL: srv.URL}, recorder)
	client.Evaluate(context.Background(), Request{TransferID: "t-1", PayerID: 1, PayeeID: 2, Amount: decimal.NewFromInt(1)})

	recorder.AssertExpectations(t)
}

func TestClient_RecorderFailureDoesNotChangeOutcome(t *testing.T) {
	srv := httptest.NewServer(respondWith(200, `{"authorization":true}`))
	defer srv.Close()

	recorder := new(MockRecorder)
	recorder.On("Record", mock.Anything, "t-2", mock.Anything).Return(errors.New("db down"))

	outcome := NewClient(Config{URL: srv.URL}, recorder).
		Evaluate(context.Background(), Request{TransferID: "t-2", PayerID: 1, PayeeID: 2, Amount: decimal.NewFromInt(1)})
	assert.True(t, outcome.Allowed)
	recorder.AssertExpectations(t)
}
