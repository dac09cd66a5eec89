package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
	requestService service.RequestService
}

func NewPaymentController(paymentService service.PaymentService, requestService service.RequestService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		requestService: requestService,
	}
}

type CreateOrderRequest struct {
	RequestID string `json:"requestId" binding:"required"`
	Amount    int    `json:"amount"` // 생략 시 검증 수수료
}

type PayRequest struct {
	Method model.PaymentMethod `json:"method" binding:"required"`
}

// authorize checks the caller may act on the request
func (ctrl *PaymentController) authorize(c *gin.Context, session *model.Session, requestID string) bool {
	req, err := ctrl.requestService.Get(c.Request.Context(), requestID)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get request")
		return false
	}
	if !service.CanAccess(session, req.CompanyID) {
		apperrors.ParseAndRespond(c, service.ErrForbidden, "get request")
		return false
	}
	return true
}

// CreateOrder opens a gateway order for a request
// POST /api/v1/payments/orders
func (ctrl *PaymentController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "requestId is required")
		return
	}
	if !ctrl.authorize(c, session, req.RequestID) {
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = model.VerificationFee
	}

	order, err := ctrl.paymentService.CreateOrder(c.Request.Context(), req.RequestID, amount)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "create order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
	})
}

// PayOrder attempts the simulated payment of an order
// POST /api/v1/payments/orders/:orderId/pay
func (ctrl *PaymentController) PayOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	order, err := ctrl.paymentService.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get order")
		return
	}
	if !ctrl.authorize(c, session, order.RequestID) {
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid pay request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Payment method is required")
		return
	}

	result, err := ctrl.paymentService.Pay(c.Request.Context(), order.OrderID, req.Method)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "pay order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": result,
	})
}

// Checkout pays for a request and records the outcome on it
// POST /api/v1/requests/:id/checkout
func (ctrl *PaymentController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Payment method is required")
		return
	}

	result, err := ctrl.paymentService.Checkout(c.Request.Context(), session, c.Param("id"), req.Method)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "checkout request")
		return
	}

	log.Info("Checkout finished", map[string]interface{}{
		"request_id": result.Request.ID,
		"status":     result.Payment.Status,
	})
	c.JSON(http.StatusOK, result)
}

// GetReceipt
// GET /api/v1/requests/:id/receipt
func (ctrl *PaymentController) GetReceipt(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}
	if !ctrl.authorize(c, session, c.Param("id")) {
		return
	}

	receipt, err := ctrl.paymentService.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get receipt")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"receipt": receipt,
	})
}
