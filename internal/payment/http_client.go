package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	HTTP      *http.Client
}

type HTTPClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.KeyID) == "" || strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, fmt.Errorf("payment gateway config incomplete")
	}
	hc := cfg.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		http:      hc,
	}, nil
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (c *HTTPClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error) {
	raw, err := json.Marshal(createOrderReq{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway order creation failed: %s", strings.TrimSpace(string(body)))
	}

	var out GatewayOrder
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("gateway order response invalid: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("gateway order response missing id")
	}
	return &out, nil
}

// VerifyPayment checks the callback signature locally: the gateway signs
// "<order id>|<payment id>" with the shared key secret. A mismatch means
// the identifiers cannot be trusted; no remote call can fix that.
func (c *HTTPClient) VerifyPayment(_ context.Context, result CallbackResult) (bool, error) {
	if result.GatewayOrderID == "" || result.GatewayPaymentID == "" || result.Signature == "" {
		return false, fmt.Errorf("callback identifiers incomplete")
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(result.GatewayOrderID + "|" + result.GatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(result.Signature)), nil
}
