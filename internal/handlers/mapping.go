package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type MappingHandler struct {
	mapperService services.MapperService
}

func NewMappingHandler(mapperService services.MapperService) *MappingHandler {
	return &MappingHandler{mapperService: mapperService}
}

func (mh *MappingHandler) MapExperience(c *gin.Context) {
	experienceID, err := uuid.Parse(c.Param("experience_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid experience id: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	result, err := mh.mapperService.MapExperience(c.Request.Context(), userID, experienceID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (mh *MappingHandler) ListByExperience(c *gin.Context) {
	experienceID, err := uuid.Parse(c.Param("experience_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid experience id: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	mappings, err := mh.mapperService.ListByExperience(c.Request.Context(), userID, experienceID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"mappings": mappings})
}

func (mh *MappingHandler) ListByUser(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	mappings, err := mh.mapperService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"mappings": mappings})
}

func (mh *MappingHandler) Override(c *gin.Context) {
	mappingID, err := uuid.Parse(c.Param("mapping_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid mapping id: %w", apierr.ErrValidation))
		return
	}
	var req services.MappingOverride
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	mapping, err := mh.mapperService.Override(c.Request.Context(), userID, mappingID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"mapping": mapping})
}

func (mh *MappingHandler) Validate(c *gin.Context) {
	mappingID, err := uuid.Parse(c.Param("mapping_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid mapping id: %w", apierr.ErrValidation))
		return
	}
	var req struct {
		Validated bool `json:"validated"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("invalid request body: %w", apierr.ErrValidation))
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	mapping, err := mh.mapperService.Validate(c.Request.Context(), userID, mappingID, req.Validated)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"mapping": mapping})
}
