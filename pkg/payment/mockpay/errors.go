package mockpay

import "errors"

var (
	// ErrInvalidConfig is returned when the gateway configuration is out of range
	ErrInvalidConfig = errors.New("invalid gateway configuration")

	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrOrderNotFound is returned when paying an order the gateway never issued
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyProcessed is returned when the order was already paid
	ErrAlreadyProcessed = errors.New("order already processed")
)
