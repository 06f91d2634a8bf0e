package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type AssessmentHandler struct {
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(assessmentService services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

func (ah *AssessmentHandler) Assess(c *gin.Context) {
	competencyID, err := uuid.Parse(c.Param("competency_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid competency id: %w", apierr.ErrValidation))
		return
	}
	// The body is optional; omitting it keeps the competency's default target.
	var req struct {
		TargetLevel int `json:"target_level"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
			return
		}
	}
	userID := requestdata.UserID(c.Request.Context())
	assessment, err := ah.assessmentService.Assess(c.Request.Context(), userID, competencyID, req.TargetLevel)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessment": assessment})
}

func (ah *AssessmentHandler) AssessAll(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	assessments, err := ah.assessmentService.AssessAll(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": assessments})
}

func (ah *AssessmentHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	assessments, err := ah.assessmentService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"assessments": assessments})
}
