package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type ComplianceHandler struct {
	complianceService services.ComplianceService
}

func NewComplianceHandler(complianceService services.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{complianceService: complianceService}
}

func (ch *ComplianceHandler) Check(c *gin.Context) {
	var req struct {
		CheckType string `json:"check_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	if req.CheckType == "" {
		req.CheckType = types.ComplianceCheckAnnual
	}
	userID := requestdata.UserID(c.Request.Context())
	check, err := ch.complianceService.Check(c.Request.Context(), userID, req.CheckType)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, gin.H{"check": check})
}

func (ch *ComplianceHandler) History(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	checks, err := ch.complianceService.History(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"checks": checks})
}
