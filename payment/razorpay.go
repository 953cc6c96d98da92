package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.razorpay.com"

var (
	// ErrGatewayUnavailable means the gateway could not be reached in time.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayRejected means the gateway answered but refused the request.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")
)

// Client talks to the Razorpay Orders API. Create one per process and
// share it; it is safe for concurrent use.
type Client struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	HTTP      *http.Client
}

func NewClient(keyID, keySecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   baseURL,
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"` // paise
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type createOrderResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

// CreateOrder opens a payment intent for the given amount and returns the
// gateway order id. Failures are terminal for the current checkout attempt;
// the caller retries by checking out again, never by looping here.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, resp.StatusCode, string(body))
	}

	var out createOrderResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: bad response body: %v", ErrGatewayRejected, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGatewayRejected, out.Error.Description)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: empty order id", ErrGatewayRejected)
	}
	return out.ID, nil
}

// VerifySignature checks a payment callback against the shared secret:
// hex HMAC-SHA256 over "<orderID>|<paymentID>". This is the only signal
// that may mark an order paid. Comparison is constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
