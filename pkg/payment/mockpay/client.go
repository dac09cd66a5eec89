package mockpay

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

const currencyINR = "INR"

// Client simulates a hosted payment gateway. Orders live in memory only.
type Client struct {
	config Config
	rand   Rand
	clock  Clock

	mu     sync.Mutex
	orders map[string]*orderState
}

type orderState struct {
	order Order
	paid  bool
}

type Option func(*Client)

// WithRand replaces the random source deciding outcomes
func WithRand(r Rand) Option {
	return func(c *Client) { c.rand = r }
}

// WithClock replaces the clock stamping paidAt
func WithClock(clock Clock) Option {
	return func(c *Client) { c.clock = clock }
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewClient creates a new simulated gateway client with the given configuration
func NewClient(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		config: config,
		rand:   globalRand{},
		clock:  systemClock{},
		orders: make(map[string]*orderState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreateOrder opens a checkout for the request amount
func (c *Client) CreateOrder(ctx context.Context, requestID string, amount int) (*Order, error) {
	if requestID == "" || amount <= 0 {
		return nil, ErrInvalidRequest
	}
	if err := util.Simulate(ctx, c.config.OrderLatency); err != nil {
		return nil, err
	}

	order := Order{
		OrderID:   "order-" + uuid.NewString(),
		RequestID: requestID,
		Amount:    amount,
		Currency:  currencyINR,
	}

	c.mu.Lock()
	c.orders[order.OrderID] = &orderState{order: order}
	c.mu.Unlock()

	return &order, nil
}

// Order returns an order issued by this client
func (c *Client) Order(orderID string) (*Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order := state.order
	return &order, nil
}

// Pay attempts the payment. A failed attempt leaves the order payable again.
func (c *Client) Pay(ctx context.Context, orderID string, method string) (*PayResult, error) {
	if method == "" {
		return nil, ErrInvalidRequest
	}

	c.mu.Lock()
	state, ok := c.orders[orderID]
	paid := ok && state.paid
	c.mu.Unlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	if paid {
		return nil, ErrAlreadyProcessed
	}

	if err := util.Simulate(ctx, c.config.PayLatency); err != nil {
		return nil, err
	}

	result := &PayResult{TxnID: newTxnID()}
	if c.rand.Float64() >= c.config.SuccessRate {
		result.Status = StatusFailed
		return result, nil
	}

	c.mu.Lock()
	if state.paid {
		c.mu.Unlock()
		return nil, ErrAlreadyProcessed
	}
	state.paid = true
	c.mu.Unlock()

	paidAt := c.clock.Now()
	result.Status = StatusPaid
	result.PaidAt = &paidAt
	return result, nil
}

func newTxnID() string {
	return "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
