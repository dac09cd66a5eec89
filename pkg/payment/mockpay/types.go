package mockpay

import "time"

type Status string

const (
	StatusPaid   Status = "PAID"
	StatusFailed Status = "FAILED"
)

// Order is a checkout session for one request
type Order struct {
	OrderID   string `json:"orderId"`
	RequestID string `json:"requestId"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
}

// PayResult is the gateway's answer to a payment attempt. PaidAt is only set on success.
type PayResult struct {
	TxnID  string     `json:"txnId"`
	Status Status     `json:"status"`
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

// Rand is the random source deciding payment outcomes
type Rand interface {
	Float64() float64
}

// Clock stamps successful payments
type Clock interface {
	Now() time.Time
}
