package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pathfinder-hq/pathfinder-backend/internal/handlers"
	"github.com/pathfinder-hq/pathfinder-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	HealthcheckHandler *handlers.HealthcheckHandler
	ExperienceHandler  *handlers.ExperienceHandler
	CompetencyHandler  *handlers.CompetencyHandler
	MappingHandler     *handlers.MappingHandler
	AssessmentHandler  *handlers.AssessmentHandler
	PertHandler        *handlers.PertHandler
	ComplianceHandler  *handlers.ComplianceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("pathfinder-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Experiences
	protected.POST("/experiences", cfg.ExperienceHandler.Create)
	protected.GET("/experiences", cfg.ExperienceHandler.List)
	protected.GET("/experiences/:experience_id", cfg.ExperienceHandler.Get)

	// Competency catalog
	protected.GET("/competencies", cfg.CompetencyHandler.List)
	protected.GET("/competencies/:competency_id", cfg.CompetencyHandler.Get)
	protected.POST("/competencies/reseed", cfg.CompetencyHandler.Reseed)

	// Mappings
	protected.POST("/experiences/:experience_id/map", cfg.MappingHandler.MapExperience)
	protected.GET("/experiences/:experience_id/mappings", cfg.MappingHandler.ListByExperience)
	protected.GET("/mappings", cfg.MappingHandler.ListByUser)
	protected.PATCH("/mappings/:mapping_id", cfg.MappingHandler.Override)
	protected.POST("/mappings/:mapping_id/validate", cfg.MappingHandler.Validate)

	// Assessments
	protected.POST("/assessments/:competency_id", cfg.AssessmentHandler.Assess)
	protected.POST("/assessments", cfg.AssessmentHandler.AssessAll)
	protected.GET("/assessments", cfg.AssessmentHandler.List)

	// PERT responses
	protected.POST("/pert/responses", cfg.PertHandler.Generate)
	protected.GET("/pert/responses", cfg.PertHandler.ListCurrent)
	protected.GET("/pert/responses/:competency_id", cfg.PertHandler.GetCurrent)
	protected.PUT("/pert/responses/:competency_id", cfg.PertHandler.Update)
	protected.GET("/pert/responses/:competency_id/history", cfg.PertHandler.History)

	// Compliance
	protected.POST("/compliance/checks", cfg.ComplianceHandler.Check)
	protected.GET("/compliance/checks", cfg.ComplianceHandler.History)

	return router
}
