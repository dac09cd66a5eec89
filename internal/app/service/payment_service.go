package service

import (
	"context"
	"errors"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/payment/mockpay"
)

// CheckoutResult is the outcome of one pay-for-request attempt
type CheckoutResult struct {
	Order   *mockpay.Order             `json:"order"`
	Payment *mockpay.PayResult         `json:"payment"`
	Request *model.VerificationRequest `json:"request"`
}

type PaymentService interface {
	CreateOrder(ctx context.Context, requestID string, amount int) (*mockpay.Order, error)
	GetOrder(ctx context.Context, orderID string) (*mockpay.Order, error)
	Pay(ctx context.Context, orderID string, method model.PaymentMethod) (*mockpay.PayResult, error)
	Checkout(ctx context.Context, actor *model.Session, requestID string, method model.PaymentMethod) (*CheckoutResult, error)
	GetReceipt(ctx context.Context, requestID string) (*model.Receipt, error)
}

type paymentService struct {
	gateway        *mockpay.Client
	requestRepo    repository.RequestRepository
	companyRepo    repository.CompanyRepository
	requestService RequestService
	metrics        *metrics.Metrics
	latency        Latency
}

func NewPaymentService(
	gateway *mockpay.Client,
	requestRepo repository.RequestRepository,
	companyRepo repository.CompanyRepository,
	requestService RequestService,
	m *metrics.Metrics,
	latency Latency,
) PaymentService {
	return &paymentService{
		gateway:        gateway,
		requestRepo:    requestRepo,
		companyRepo:    companyRepo,
		requestService: requestService,
		metrics:        m,
		latency:        latency,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, requestID string, amount int) (*mockpay.Order, error) {
	if _, err := s.findRequest(ctx, requestID); err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, requestID, amount)
	if err != nil {
		if errors.Is(err, mockpay.ErrInvalidRequest) {
			return nil, newValidationError("amount", "Amount must be positive")
		}
		return nil, err
	}

	logger.Info("Payment order created", map[string]interface{}{
		"order_id":   order.OrderID,
		"request_id": requestID,
		"amount":     amount,
	})
	return order, nil
}

func (s *paymentService) GetOrder(ctx context.Context, orderID string) (*mockpay.Order, error) {
	order, err := s.gateway.Order(orderID)
	if err != nil {
		if errors.Is(err, mockpay.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *paymentService) Pay(ctx context.Context, orderID string, method model.PaymentMethod) (*mockpay.PayResult, error) {
	if !method.Valid() {
		return nil, newValidationError("method", "Invalid payment method")
	}

	result, err := s.gateway.Pay(ctx, orderID, string(method))
	if err != nil {
		switch {
		case errors.Is(err, mockpay.ErrOrderNotFound):
			return nil, ErrOrderNotFound
		case errors.Is(err, mockpay.ErrAlreadyProcessed):
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.metrics.IncrementPaymentAttempt(string(result.Status))
	logger.Info("Payment attempt finished", map[string]interface{}{
		"order_id": orderID,
		"txn_id":   result.TxnID,
		"status":   result.Status,
		"method":   method,
	})
	return result, nil
}

// Checkout runs order, payment and recording in one go. Failed attempts are
// recorded as well, so the timeline shows every try.
func (s *paymentService) Checkout(ctx context.Context, actor *model.Session, requestID string, method model.PaymentMethod) (*CheckoutResult, error) {
	req, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !CanAccess(actor, req.CompanyID) {
		return nil, ErrForbidden
	}
	// nothing is charged unless the outcome can be recorded
	if req.Payment.Status == model.PaymentStatusPaid || !s.requestService.CanRecordPayment(req.Status) {
		return nil, ErrInvalidTransition
	}

	order, err := s.CreateOrder(ctx, req.ID, req.Fee)
	if err != nil {
		return nil, err
	}

	result, err := s.Pay(ctx, order.OrderID, method)
	if err != nil {
		return nil, err
	}

	updated, err := s.requestService.UpdatePayment(ctx, actor, req.ID, PaymentUpdate{
		Status: model.PaymentStatus(result.Status),
		TxnID:  result.TxnID,
		PaidAt: result.PaidAt,
		Method: method,
	})
	if err != nil {
		logger.Error("Failed to record payment outcome", err, map[string]interface{}{
			"request_id": req.ID,
			"txn_id":     result.TxnID,
		})
		return nil, err
	}

	return &CheckoutResult{Order: order, Payment: result, Request: updated}, nil
}

func (s *paymentService) GetReceipt(ctx context.Context, requestID string) (*model.Receipt, error) {
	if err := wait(ctx, s.latency.Receipt); err != nil {
		return nil, err
	}

	req, err := s.findRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Payment.Status != model.PaymentStatusPaid || req.Payment.PaidAt == nil {
		return nil, ErrReceiptNotAvailable
	}

	return &model.Receipt{
		RequestID:   req.ID,
		CompanyName: s.companyName(ctx, req.CompanyID),
		Amount:      req.Payment.Amount,
		Currency:    req.Payment.Currency,
		Method:      req.Payment.Method,
		TxnID:       req.Payment.TxnID,
		PaidAt:      *req.Payment.PaidAt,
	}, nil
}

func (s *paymentService) companyName(ctx context.Context, companyID string) string {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err == nil {
		return company.CompanyName
	}
	if companyID == DemoCompanyID {
		return DemoCompany().CompanyName
	}
	return companyID
}

func (s *paymentService) findRequest(ctx context.Context, id string) (*model.VerificationRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}
