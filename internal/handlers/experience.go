package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type ExperienceHandler struct {
	experienceService services.ExperienceService
}

func NewExperienceHandler(experienceService services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{experienceService: experienceService}
}

func (eh *ExperienceHandler) Create(c *gin.Context) {
	var req services.CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	experience, err := eh.experienceService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"experience": experience})
}

func (eh *ExperienceHandler) Get(c *gin.Context) {
	experienceID, err := uuid.Parse(c.Param("experience_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid experience id: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	experience, err := eh.experienceService.GetByID(c.Request.Context(), userID, experienceID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"experience": experience})
}

func (eh *ExperienceHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	experiences, err := eh.experienceService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"experiences": experiences})
}
