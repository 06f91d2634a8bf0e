package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type PertHandler struct {
	pertService services.PertService
}

func NewPertHandler(pertService services.PertService) *PertHandler {
	return &PertHandler{pertService: pertService}
}

func (ph *PertHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	response, err := ph.pertService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"response": response})
}

func (ph *PertHandler) Update(c *gin.Context) {
	competencyID, err := uuid.Parse(c.Param("competency_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid competency id: %w", apierr.ErrValidation))
		return
	}
	var req services.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	response, err := ph.pertService.Update(c.Request.Context(), userID, competencyID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"response": response})
}

func (ph *PertHandler) GetCurrent(c *gin.Context) {
	competencyID, err := uuid.Parse(c.Param("competency_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid competency id: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	response, err := ph.pertService.GetCurrent(c.Request.Context(), userID, competencyID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"response": response})
}

func (ph *PertHandler) ListCurrent(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	responses, err := ph.pertService.ListCurrent(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"responses": responses})
}

func (ph *PertHandler) History(c *gin.Context) {
	competencyID, err := uuid.Parse(c.Param("competency_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid competency id: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	versions, err := ph.pertService.History(c.Request.Context(), userID, competencyID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}
