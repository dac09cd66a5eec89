package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

const filterDateLayout = "2006-01-02"

// currentSession returns the authenticated session or writes a 401
func currentSession(c *gin.Context) (*model.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		middleware.GetLoggerFromContext(c).Warn("Session missing from context", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, service.ErrNotAuthenticated.Error())
		return nil, false
	}
	return session, true
}

// parseRequestFilter reads list filters from the query string.
// dateTo is inclusive of the whole day.
func parseRequestFilter(c *gin.Context) (service.RequestFilter, error) {
	filter := service.RequestFilter{
		Status:     model.RequestStatus(c.Query("status")),
		University: c.Query("university"),
		Query:      c.Query("q"),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return filter, &service.ValidationError{Fields: map[string]string{"status": "Unknown status"}}
	}

	if raw := c.Query("dateFrom"); raw != "" {
		from, err := parseFilterDate(raw)
		if err != nil {
			return filter, &service.ValidationError{Fields: map[string]string{"dateFrom": "Invalid date"}}
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("dateTo"); raw != "" {
		to, err := parseFilterDate(raw)
		if err != nil {
			return filter, &service.ValidationError{Fields: map[string]string{"dateTo": "Invalid date"}}
		}
		if len(raw) == len(filterDateLayout) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.DateTo = &to
	}
	return filter, nil
}

func parseFilterDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(filterDateLayout, raw)
}
