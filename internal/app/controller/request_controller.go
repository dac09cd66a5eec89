package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type RequestController struct {
	requestService service.RequestService
	exportService  service.ExportService
	clock          util.Clock
}

func NewRequestController(requestService service.RequestService, exportService service.ExportService, clock util.Clock) *RequestController {
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &RequestController{
		requestService: requestService,
		exportService:  exportService,
		clock:          clock,
	}
}

type SetStatusRequest struct {
	Status model.RequestStatus `json:"status" binding:"required"`
	Reason string              `json:"reason"`
}

// ListRequests returns requests visible to the caller, newest first
// GET /api/v1/requests?status=&university=&q=&dateFrom=&dateTo=
func (ctrl *RequestController) ListRequests(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	filter, err := parseRequestFilter(c)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list requests")
		return
	}

	requests, err := ctrl.requestService.List(c.Request.Context(), service.ScopeFilter(session, filter))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// loadAccessible fetches a request and enforces company scoping
func (ctrl *RequestController) loadAccessible(c *gin.Context, session *model.Session) (*model.VerificationRequest, bool) {
	req, err := ctrl.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get request")
		return nil, false
	}
	if !service.CanAccess(session, req.CompanyID) {
		middleware.GetLoggerFromContext(c).Warn("Request access denied", map[string]interface{}{
			"request_id": req.ID,
			"user_id":    session.User.ID,
		})
		apperrors.ParseAndRespond(c, service.ErrForbidden, "get request")
		return nil, false
	}
	return req, true
}

// GetRequest
// GET /api/v1/requests/:id
func (ctrl *RequestController) GetRequest(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	req, ok := ctrl.loadAccessible(c, session)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": req,
	})
}

// CreateRequest opens a verification request for a candidate
// POST /api/v1/requests
func (ctrl *RequestController) CreateRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req service.CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	created, err := ctrl.requestService.Create(c.Request.Context(), session, req)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "create request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"request": created,
	})
}

// UpdateRequest applies a partial update
// PATCH /api/v1/requests/:id
func (ctrl *RequestController) UpdateRequest(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var patch service.RequestPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		log.Warn("Invalid request patch", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	updated, err := ctrl.requestService.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": updated,
	})
}

// SetStatus moves a request to a new lifecycle status
// PUT /api/v1/requests/:id/status
func (ctrl *RequestController) SetStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid status request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status is required")
		return
	}

	updated, err := ctrl.requestService.SetStatus(c.Request.Context(), session, c.Param("id"), req.Status, req.Reason)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update request status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": updated,
	})
}

// UpdatePayment records a payment outcome reported by the client
// PUT /api/v1/requests/:id/payment
func (ctrl *RequestController) UpdatePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}
	if _, ok := ctrl.loadAccessible(c, session); !ok {
		return
	}

	var req service.PaymentUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid payment update", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid payment data")
		return
	}

	updated, err := ctrl.requestService.UpdatePayment(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update request payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": updated,
	})
}

// UpdateCheck edits the education check of a request
// PUT /api/v1/requests/:id/check
func (ctrl *RequestController) UpdateCheck(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req service.CheckPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid check update", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid check data")
		return
	}

	updated, err := ctrl.requestService.UpdateCheck(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update request check")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": updated,
	})
}

// ExportRequests downloads the filtered list as CSV or XLSX
// GET /api/v1/requests/export?format=csv|xlsx
func (ctrl *RequestController) ExportRequests(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	filter, err := parseRequestFilter(c)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "export requests")
		return
	}
	filter = service.ScopeFilter(session, filter)

	format := c.DefaultQuery("format", "csv")
	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "csv":
		err = ctrl.exportService.CSV(c.Request.Context(), &buf, filter)
		contentType = csvContentType
	case "xlsx":
		err = ctrl.exportService.XLSX(c.Request.Context(), &buf, filter)
		contentType = xlsxContentType
	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Format must be csv or xlsx")
		return
	}
	if err != nil {
		log.Error("Export failed", err, map[string]interface{}{
			"format": format,
		})
		apperrors.ParseAndRespond(c, err, "export requests")
		return
	}

	filename := fmt.Sprintf("verification-requests-%s.%s", ctrl.clock.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
