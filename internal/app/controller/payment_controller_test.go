package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentController_CheckoutAndReceipt(t *testing.T) {
	ts := setupControllerTest(t)
	employer := ts.login(t, "employer@demo", "demo123")
	created := ts.createRequest(t, employer)
	path := "/api/v1/requests/" + created.ID

	w := ts.do(t, http.MethodGet, path+"/receipt", employer, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	var errResp apperrors.ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, apperrors.RequestReceiptNotReady, errResp.Error)

	w = ts.do(t, http.MethodPost, path+"/checkout", employer, map[string]string{"method": "Card"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var checkout struct {
		Payment struct {
			Status string `json:"status"`
			TxnID  string `json:"txnId"`
		} `json:"payment"`
		Request model.VerificationRequest `json:"request"`
	}
	decode(t, w, &checkout)
	assert.Equal(t, "PAID", checkout.Payment.Status)
	assert.NotEmpty(t, checkout.Payment.TxnID)
	assert.Equal(t, model.RequestStatusInProgress, checkout.Request.Status)

	w = ts.do(t, http.MethodGet, path+"/receipt", employer, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var receipt struct {
		Receipt model.Receipt `json:"receipt"`
	}
	decode(t, w, &receipt)
	assert.Equal(t, created.ID, receipt.Receipt.RequestID)
	assert.Equal(t, "Demo Tech Solutions", receipt.Receipt.CompanyName)
	assert.Equal(t, model.VerificationFee, receipt.Receipt.Amount)
	assert.Equal(t, checkout.Payment.TxnID, receipt.Receipt.TxnID)

	w = ts.do(t, http.MethodPost, path+"/checkout", employer, map[string]string{"method": "Card"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentController_OrderThenPay(t *testing.T) {
	ts := setupControllerTest(t)
	employer := ts.login(t, "employer@demo", "demo123")
	created := ts.createRequest(t, employer)

	w := ts.do(t, http.MethodPost, "/api/v1/payments/orders", employer, map[string]string{"requestId": created.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var orderResp struct {
		Order struct {
			OrderID  string `json:"orderId"`
			Amount   int    `json:"amount"`
			Currency string `json:"currency"`
		} `json:"order"`
	}
	decode(t, w, &orderResp)
	require.NotEmpty(t, orderResp.Order.OrderID)
	assert.Equal(t, model.VerificationFee, orderResp.Order.Amount)
	assert.Equal(t, "INR", orderResp.Order.Currency)

	w = ts.do(t, http.MethodPost, "/api/v1/payments/orders/"+orderResp.Order.OrderID+"/pay", employer, map[string]string{"method": "UPI"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/v1/payments/orders/order-missing/pay", employer, map[string]string{"method": "UPI"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentController_PayOrderOfOtherCompanyIsForbidden(t *testing.T) {
	ts := setupControllerTest(t)
	demo := ts.login(t, "employer@demo", "demo123")
	created := ts.createRequest(t, demo)

	w := ts.do(t, http.MethodPost, "/api/v1/payments/orders", demo, map[string]string{"requestId": created.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var orderResp struct {
		Order struct {
			OrderID string `json:"orderId"`
		} `json:"order"`
	}
	decode(t, w, &orderResp)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", validSignupBody())
	require.Equal(t, http.StatusCreated, w.Code)
	other := ts.login(t, "hr@acme.test", "secret1")

	w = ts.do(t, http.MethodPost, "/api/v1/payments/orders/"+orderResp.Order.OrderID+"/pay", other, map[string]string{"method": "UPI"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/payments/orders/"+orderResp.Order.OrderID+"/pay", demo, map[string]string{"method": "UPI"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPaymentController_Validation(t *testing.T) {
	ts := setupControllerTest(t)
	employer := ts.login(t, "employer@demo", "demo123")
	created := ts.createRequest(t, employer)

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"Checkout without method", "/api/v1/requests/" + created.ID + "/checkout", map[string]string{}, http.StatusBadRequest},
		{"Order without request", "/api/v1/payments/orders", map[string]string{}, http.StatusBadRequest},
		{"Order for unknown request", "/api/v1/payments/orders", map[string]string{"requestId": "REQ-missing"}, http.StatusNotFound},
		{"Checkout unknown request", "/api/v1/requests/REQ-missing/checkout", map[string]string{"method": "UPI"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, tt.path, employer, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}
