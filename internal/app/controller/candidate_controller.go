package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
	"github.com/ikkim/eduverify-backend/internal/middleware"
)

type CandidateController struct {
	candidateService service.CandidateService
}

func NewCandidateController(candidateService service.CandidateService) *CandidateController {
	return &CandidateController{
		candidateService: candidateService,
	}
}

// ListCandidates
// GET /api/v1/candidates
func (ctrl *CandidateController) ListCandidates(c *gin.Context) {
	candidates, err := ctrl.candidateService.List(c.Request.Context())
	if err != nil {
		apperrors.ParseAndRespond(c, err, "list candidates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// GetCandidate
// GET /api/v1/candidates/:id
func (ctrl *CandidateController) GetCandidate(c *gin.Context) {
	candidate, err := ctrl.candidateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "get candidate")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate": candidate,
	})
}

// CreateCandidate
// POST /api/v1/candidates
func (ctrl *CandidateController) CreateCandidate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CandidateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid candidate request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid candidate data")
		return
	}

	candidate, err := ctrl.candidateService.Create(c.Request.Context(), req)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "create candidate")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"candidate": candidate,
	})
}
