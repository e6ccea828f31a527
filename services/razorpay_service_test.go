package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	svc := NewRazorpayService()

	body := []byte(`{"event":"payment.captured"}`)

	assert.True(t, svc.VerifyWebhookSignature(body, sign("whsec", body)))
	assert.False(t, svc.VerifyWebhookSignature(body, sign("wrong", body)))
	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), sign("whsec", body)))
	assert.False(t, svc.VerifyWebhookSignature(body, ""))
}

func TestVerifyPaymentSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	svc := NewRazorpayService()

	good := sign("secret", []byte("order_1|pay_1"))
	assert.True(t, svc.VerifyPaymentSignature("order_1", "pay_1", good))
	assert.False(t, svc.VerifyPaymentSignature("order_1", "pay_2", good))
	assert.False(t, svc.VerifyPaymentSignature("order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var req gatewayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(50000), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(GatewayOrder{
			ID:       "order_test123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	t.Setenv("RAZORPAY_BASE_URL", server.URL)
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	svc := NewRazorpayService()

	order, err := svc.CreateOrder(context.Background(), 50000, "INR", "DSN-abc", nil)
	require.NoError(t, err)
	assert.Equal(t, "order_test123", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "created", order.Status)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"Authentication failed"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	t.Setenv("RAZORPAY_BASE_URL", server.URL)
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "bad")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	svc := NewRazorpayService()

	_, err := svc.CreateOrder(context.Background(), 1000, "INR", "DSN-x", nil)
	assert.ErrorContains(t, err, "status 401")
}

func TestCreateOrder_MissingCredentials(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "")
	svc := NewRazorpayService()

	_, err := svc.CreateOrder(context.Background(), 1000, "INR", "DSN-y", nil)
	assert.Error(t, err)
}
