package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daansetu/daansetu_backend/services"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newOrderContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/donations/order", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateOrder_InvalidProgramIDRejectedBeforeGatewayCall(t *testing.T) {
	var gatewayCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&gatewayCalls, 1)
		w.Write([]byte(`{"id":"order_test","amount":50000,"currency":"INR","receipt":"r","status":"created"}`))
	}))
	defer server.Close()

	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("RAZORPAY_BASE_URL", server.URL)

	dc := NewDonationController(nil, nil, nil, services.NewRazorpayService(), nil, nil)

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	c, rec := newOrderContext(e, `{"amount": 50000, "programId": "not-a-hex-id"}`)
	require.NoError(t, dc.CreateOrder(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid program id")
	assert.Equal(t, int64(0), atomic.LoadInt64(&gatewayCalls),
		"a rejected request must not create an order at the gateway")
}

func TestCreateOrder_InvalidReferredByRejectedBeforeGatewayCall(t *testing.T) {
	var gatewayCalls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&gatewayCalls, 1)
		w.Write([]byte(`{"id":"order_test","amount":50000,"currency":"INR","receipt":"r","status":"created"}`))
	}))
	defer server.Close()

	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "secret")
	t.Setenv("RAZORPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("RAZORPAY_BASE_URL", server.URL)

	dc := NewDonationController(nil, nil, nil, services.NewRazorpayService(), nil, nil)

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	c, rec := newOrderContext(e, `{"amount": 50000, "referredBy": "nope"}`)
	require.NoError(t, dc.CreateOrder(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), atomic.LoadInt64(&gatewayCalls))
}
