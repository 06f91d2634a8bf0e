package main

import (
	"context"
	"os"
	"time"

	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/db"
	"github.com/pathfinder-hq/pathfinder-backend/internal/handlers"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/middleware"
	"github.com/pathfinder-hq/pathfinder-backend/internal/observability"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/server"
	"github.com/pathfinder-hq/pathfinder-backend/internal/services"
	"github.com/pathfinder-hq/pathfinder-backend/internal/utils"
)

func main() {
	mode := os.Getenv("APP_ENV")
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "pathfinder-backend",
		Environment: mode,
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOtel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(shutdownCtx)
		}()
	}

	policy, err := config.LoadPolicy(log)
	if err != nil {
		log.Fatal("Failed to load policy", "error", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to connect to postgres", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to migrate database", "error", err)
	}
	gormDB := pg.DB()

	// Repos
	userRepo := repos.NewUserRepo(gormDB, log)
	userTokenRepo := repos.NewUserTokenRepo(gormDB, log)
	experienceRepo := repos.NewExperienceRepo(gormDB, log)
	competencyRepo := repos.NewCompetencyRepo(gormDB, log)
	mappingRepo := repos.NewMappingRepo(gormDB, log)
	assessmentRepo := repos.NewAssessmentRepo(gormDB, log)
	pertResponseRepo := repos.NewPertResponseRepo(gormDB, log)
	complianceCheckRepo := repos.NewComplianceCheckRepo(gormDB, log)
	aiCallLogRepo := repos.NewAICallLogRepo(gormDB, log)

	// Services
	authService, err := services.NewAuthService(log, gormDB, userRepo, userTokenRepo)
	if err != nil {
		log.Fatal("Failed to build auth service", "error", err)
	}
	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Fatal("Failed to build AI client", "error", err)
	}
	auditor := services.NewAICallAuditor(log, aiCallLogRepo)
	semanticScorer := services.NewAISemanticScorer(log, aiClient, auditor)
	relevanceScorer := services.NewRelevanceScorer(log, semanticScorer, policy.Scoring)

	catalogCache := services.CatalogCache(nil)
	if utils.GetEnvAsBool("CATALOG_CACHE_ENABLED", true, log) {
		catalogCache = services.NewRedisCatalogCache(log)
	}
	catalogService := services.NewCatalogService(log, competencyRepo, catalogCache)
	experienceService := services.NewExperienceService(log, experienceRepo)
	mapperService := services.NewMapperService(log, gormDB, experienceRepo, mappingRepo, catalogService, relevanceScorer, policy.Scoring)
	assessmentService := services.NewAssessmentService(log, gormDB, assessmentRepo, mappingRepo, pertResponseRepo, catalogService, policy.Scoring)
	pertService := services.NewPertService(log, gormDB, pertResponseRepo, experienceRepo, mappingRepo, catalogService, aiClient, auditor, policy.Pert, policy.Scoring)
	complianceService := services.NewComplianceService(log, complianceCheckRepo, pertResponseRepo, mappingRepo, experienceRepo, catalogService, policy.Compliance)

	// Handlers
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        handlers.NewAuthHandler(authService),
		AuthMiddleware:     middleware.NewAuthMiddleware(log, authService),
		HealthcheckHandler: handlers.NewHealthcheckHandler(gormDB),
		ExperienceHandler:  handlers.NewExperienceHandler(experienceService),
		CompetencyHandler:  handlers.NewCompetencyHandler(catalogService),
		MappingHandler:     handlers.NewMappingHandler(mapperService),
		AssessmentHandler:  handlers.NewAssessmentHandler(assessmentService),
		PertHandler:        handlers.NewPertHandler(pertService),
		ComplianceHandler:  handlers.NewComplianceHandler(complianceService),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
