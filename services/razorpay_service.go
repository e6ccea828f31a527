package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// RazorpayService handles interactions with the Razorpay API
type RazorpayService struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	client        *http.Client
	debug         bool
}

// GatewayOrder is the order object returned by the gateway. Amounts are in
// paise.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// NewRazorpayService creates a new Razorpay service instance
func NewRazorpayService() *RazorpayService {
	baseURL := os.Getenv("RAZORPAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	webhookSecret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")

	if keyID == "" || keySecret == "" || webhookSecret == "" {
		log.Printf("WARNING: Razorpay credentials not fully configured:")
		if keyID == "" {
			log.Printf("  - RAZORPAY_KEY_ID is missing")
		}
		if keySecret == "" {
			log.Printf("  - RAZORPAY_KEY_SECRET is missing")
		}
		if webhookSecret == "" {
			log.Printf("  - RAZORPAY_WEBHOOK_SECRET is missing")
		}
		log.Printf("Please set these environment variables for donation checkout to work")
	}

	return &RazorpayService{
		baseURL:       baseURL,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 30 * time.Second},
		debug:         os.Getenv("RAZORPAY_DEBUG") == "true",
	}
}

// KeyID returns the public key id the checkout page needs.
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder creates a gateway order for the given amount in paise and
// returns its handle.
func (s *RazorpayService) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	if s.keyID == "" || s.keySecret == "" {
		return nil, fmt.Errorf("missing Razorpay credentials. Please set RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET environment variables")
	}

	payload := gatewayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	url := s.baseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	if s.debug {
		log.Printf("Razorpay API Request: POST %s amount=%d currency=%s receipt=%s", url, amount, currency, receipt)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if s.debug {
		log.Printf("Razorpay API Response: %s", string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay API error: status %d: %s", resp.StatusCode, string(respBody))
	}

	var order GatewayOrder
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w\nResponse body: %s", err, string(respBody))
	}

	return &order, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature the gateway sends
// with every webhook over the raw request body.
func (s *RazorpayService) VerifyWebhookSignature(body []byte, signature string) bool {
	if s.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPaymentSignature checks the checkout success signature computed over
// "orderId|paymentId" with the key secret.
func (s *RazorpayService) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
