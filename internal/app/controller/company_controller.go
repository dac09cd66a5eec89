package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

type CompanyController struct {
	companyService service.CompanyService
}

func NewCompanyController(companyService service.CompanyService) *CompanyController {
	return &CompanyController{
		companyService: companyService,
	}
}

// GetCompany returns the caller's company profile
// GET /api/v1/company
func (ctrl *CompanyController) GetCompany(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	company, err := ctrl.companyService.Get(c.Request.Context(), session.Company.ID)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get company")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"company": company,
	})
}

// UpdateCompany saves the settings page
// PUT /api/v1/company
func (ctrl *CompanyController) UpdateCompany(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	session, ok := currentSession(c)
	if !ok {
		return
	}

	var req service.CompanyUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid company update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid company data")
		return
	}

	company, err := ctrl.companyService.Update(c.Request.Context(), session, req)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "update company")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Company updated successfully",
		"company": company,
	})
}
