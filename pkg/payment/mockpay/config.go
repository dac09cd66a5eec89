package mockpay

import "time"

// Config represents the configuration for the simulated gateway
type Config struct {
	// SuccessRate is the probability in [0,1] that a payment succeeds
	SuccessRate float64

	// OrderLatency is how long CreateOrder takes
	OrderLatency time.Duration

	// PayLatency is how long Pay takes
	PayLatency time.Duration
}

// DefaultConfig mirrors the hosted checkout: 90% success, 0.5s order, 1.5s payment
func DefaultConfig() Config {
	return Config{
		SuccessRate:  0.9,
		OrderLatency: 500 * time.Millisecond,
		PayLatency:   1500 * time.Millisecond,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return ErrInvalidConfig
	}
	if c.OrderLatency < 0 || c.PayLatency < 0 {
		return ErrInvalidConfig
	}
	return nil
}
