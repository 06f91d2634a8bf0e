package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/seed"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
)

type CompetencyHandler struct {
	catalogService services.CatalogService
}

func NewCompetencyHandler(catalogService services.CatalogService) *CompetencyHandler {
	return &CompetencyHandler{catalogService: catalogService}
}

func (ch *CompetencyHandler) List(c *gin.Context) {
	filter := &repos.CompetencyFilter{
		Category:     c.Query("category"),
		EVRRelevance: c.Query("evr_relevance"),
	}
	competencies, err := ch.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"competencies": competencies})
}

func (ch *CompetencyHandler) Get(c *gin.Context) {
	competencyID, err := uuid.Parse(c.Param("competency_id"))
	if err != nil {
		RespondError(c, fmt.Errorf("invalid competency id: %w", apierr.ErrValidation))
		return
	}
	competency, err := ch.catalogService.GetByID(c.Request.Context(), competencyID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"competency": competency})
}

// Reseed replaces the catalog with the built-in CPA seed set.
func (ch *CompetencyHandler) Reseed(c *gin.Context) {
	if err := ch.catalogService.Reseed(c.Request.Context(), seed.CompetencyCatalog()); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"reseeded": true})
}
