package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// CodeOrderPaid is the gateway's signal that the order was already
// settled on its side.
const CodeOrderPaid = "ORDERPAID"

// PaymentIntent is the provider payload a client needs to complete a
// payment. Code is set by the gateway when the charge cannot proceed.
type PaymentIntent struct {
	TimeStamp  string `json:"timeStamp"`
	NonceStr   string `json:"nonceStr"`
	PackageStr string `json:"package"`
	SignType   string `json:"signType"`
	PaySign    string `json:"paySign"`
	Code       string `json:"code,omitempty"`
}

// PaymentGateway is the narrow contract the lifecycle manager consumes.
// The provider's cryptographic handshake stays behind it.
type PaymentGateway interface {
	Pay(ctx context.Context, orderNumber string, amount float64, description, payerID string) (*PaymentIntent, error)
}

// GatewayConfig holds the payment provider settings.
type GatewayConfig struct {
	BaseURL    string
	MerchantID string
	APIKey     string
	Timeout    time.Duration
}

// HTTPPaymentGateway talks to the payment provider over HTTP with a
// bounded timeout, so a slow provider can never hang a caller.
type HTTPPaymentGateway struct {
	config     *GatewayConfig
	httpClient *http.Client
}

func NewHTTPPaymentGateway(config *GatewayConfig) *HTTPPaymentGateway {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &HTTPPaymentGateway{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// NewPaymentGatewayFromEnv builds the gateway from environment
// variables, falling back to the provider sandbox.
func NewPaymentGatewayFromEnv() *HTTPPaymentGateway {
	baseURL := os.Getenv("PAY_GATEWAY_URL")
	if baseURL == "" {
		baseURL = "https://api.sandbox.pay.example.com"
	}
	return NewHTTPPaymentGateway(&GatewayConfig{
		BaseURL:    baseURL,
		MerchantID: os.Getenv("PAY_MERCHANT_ID"),
		APIKey:     os.Getenv("PAY_API_KEY"),
	})
}

// Pay asks the provider for a payable intent for the given merchant
// order number. The call is idempotent on the provider side and safe to
// retry.
func (g *HTTPPaymentGateway) Pay(ctx context.Context, orderNumber string, amount float64, description, payerID string) (*PaymentIntent, error) {
	payload := map[string]interface{}{
		"merchant_id":           g.config.MerchantID,
		"merchant_order_number": orderNumber,
		"total_amount":          amount,
		"description":           description,
		"payer_id":              payerID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	url := g.config.BaseURL + "/v1/pay/transactions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(g.config.APIKey+":")))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: %s", string(respBody))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}
	return &intent, nil
}
