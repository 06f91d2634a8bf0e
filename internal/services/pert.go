package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathfinder-hq/pathfinder-backend/internal/apierr"
	"github.com/pathfinder-hq/pathfinder-backend/internal/config"
	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/repos"
	"github.com/pathfinder-hq/pathfinder-backend/internal/requestdata"
	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

type GenerateRequest struct {
	CompetencyID     uuid.UUID `json:"competency_id"`
	ExperienceID     uuid.UUID `json:"experience_id"`
	ProficiencyLevel int       `json:"proficiency_level"`
}

// UpdateRequest carries edited STAR sections. Nil fields keep the current
// section; the edit always lands as a new version.
type UpdateRequest struct {
	Situation *string `json:"situation"`
	Task      *string `json:"task"`
	Action    *string `json:"action"`
	Result    *string `json:"result"`
}

type PertService interface {
	// Generate drafts a STAR response via the provider and stores it as the
	// next version for (user, competency). There is no keyword fallback for
	// generation; a provider failure surfaces as an error.
	Generate(ctx context.Context, userID uuid.UUID, req *GenerateRequest) (*types.PertResponse, error)
	// Update applies section edits as a new version of the current response.
	Update(ctx context.Context, userID, competencyID uuid.UUID, req *UpdateRequest) (*types.PertResponse, error)
	GetCurrent(ctx context.Context, userID, competencyID uuid.UUID) (*types.PertResponse, error)
	ListCurrent(ctx context.Context, userID uuid.UUID) ([]*types.PertResponse, error)
	// History returns every version, oldest first, current version last.
	History(ctx context.Context, userID, competencyID uuid.UUID) ([]*types.PertResponse, error)
}

type pertService struct {
	log         *logger.Logger
	db          *gorm.DB
	responses   repos.PertResponseRepo
	experiences repos.ExperienceRepo
	mappings    repos.MappingRepo
	catalog     CatalogService
	aiClient    AIClient
	auditor     *AICallAuditor
	policy      config.PertPolicy
	scoring     config.ScoringPolicy
}

func NewPertService(
	log *logger.Logger,
	db *gorm.DB,
	responses repos.PertResponseRepo,
	experiences repos.ExperienceRepo,
	mappings repos.MappingRepo,
	catalog CatalogService,
	aiClient AIClient,
	auditor *AICallAuditor,
	policy config.PertPolicy,
	scoring config.ScoringPolicy,
) PertService {
	return &pertService{
		log:         log.With("service", "PertService"),
		db:          db,
		responses:   responses,
		experiences: experiences,
		mappings:    mappings,
		catalog:     catalog,
		aiClient:    aiClient,
		auditor:     auditor,
		policy:      policy,
		scoring:     scoring,
	}
}

func (ps *pertService) Generate(ctx context.Context, userID uuid.UUID, req *GenerateRequest) (*types.PertResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("empty generate request: %w", apierr.ErrValidation)
	}
	if req.ProficiencyLevel < 0 || req.ProficiencyLevel > 2 {
		return nil, fmt.Errorf("proficiency level must be 0, 1 or 2, got %d: %w", req.ProficiencyLevel, apierr.ErrValidation)
	}

	experience, err := ps.experiences.GetByID(ctx, nil, req.ExperienceID)
	if err != nil {
		return nil, err
	}
	if experience == nil || experience.UserID != userID {
		return nil, fmt.Errorf("experience %s: %w", req.ExperienceID, apierr.ErrNotFound)
	}
	competency, err := ps.catalog.GetByID(ctx, req.CompetencyID)
	if err != nil {
		return nil, err
	}

	// A response is only drafted over an experience the mapper (or the user)
	// has already tied to the competency with enough relevance.
	mapping, err := ps.mappings.GetByTuple(ctx, nil, userID, experience.ID, competency.ID)
	if err != nil {
		return nil, err
	}
	if mapping == nil || mapping.RelevanceScore < ps.scoring.MinRelevance {
		return nil, fmt.Errorf("no sufficiently relevant mapping links experience %s to competency %s: %w",
			experience.ID, competency.Code, apierr.ErrValidation)
	}

	sections, err := ps.draftStar(ctx, experience, competency, req.ProficiencyLevel)
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w (%s)", apierr.ErrProvider, err.Error())
	}

	response := ps.buildResponse(userID, competency.ID, experience.ID, req.ProficiencyLevel, sections)
	if response.CharacterCount > ps.policy.MaxCharacters {
		// The prompt asks the model to stay well under the ceiling, but the
		// output is not trusted: an oversized draft is rejected, not trimmed.
		return nil, fmt.Errorf("generated draft is %d characters, ceiling is %d: %w",
			response.CharacterCount, ps.policy.MaxCharacters, apierr.ErrProvider)
	}

	saved, err := ps.saveNewVersion(ctx, response)
	if err != nil {
		return nil, err
	}
	ps.log.Info("Generated PERT response",
		"competency", competency.Code,
		"version", saved.Version,
		"characters", saved.CharacterCount,
	)
	return saved, nil
}

func (ps *pertService) Update(ctx context.Context, userID, competencyID uuid.UUID, req *UpdateRequest) (*types.PertResponse, error) {
	if req == nil || (req.Situation == nil && req.Task == nil && req.Action == nil && req.Result == nil) {
		return nil, fmt.Errorf("update carries no section edits: %w", apierr.ErrValidation)
	}

	current, err := ps.responses.GetCurrent(ctx, nil, userID, competencyID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no response exists for competency %s: %w", competencyID, apierr.ErrNotFound)
	}

	sections := StarSections{
		Situation: current.Situation,
		Task:      current.Task,
		Action:    current.Action,
		Result:    current.Result,
	}
	if req.Situation != nil {
		sections.Situation = *req.Situation
	}
	if req.Task != nil {
		sections.Task = *req.Task
	}
	if req.Action != nil {
		sections.Action = *req.Action
	}
	if req.Result != nil {
		sections.Result = *req.Result
	}
	if err := validateSections(sections); err != nil {
		return nil, err
	}

	response := ps.buildResponse(userID, competencyID, current.ExperienceID, current.ProficiencyLevel, sections)
	if response.CharacterCount > ps.policy.MaxCharacters {
		// The ceiling is checked before any write: the current version must
		// survive an over-limit edit untouched.
		return nil, fmt.Errorf("response is %d characters, ceiling is %d: %w",
			response.CharacterCount, ps.policy.MaxCharacters, apierr.ErrValidation)
	}

	saved, err := ps.saveNewVersion(ctx, response)
	if err != nil {
		return nil, err
	}
	ps.log.Info("Updated PERT response",
		"competency_id", competencyID,
		"version", saved.Version,
		"characters", saved.CharacterCount,
	)
	return saved, nil
}

func (ps *pertService) GetCurrent(ctx context.Context, userID, competencyID uuid.UUID) (*types.PertResponse, error) {
	current, err := ps.responses.GetCurrent(ctx, nil, userID, competencyID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no response exists for competency %s: %w", competencyID, apierr.ErrNotFound)
	}
	return current, nil
}

func (ps *pertService) ListCurrent(ctx context.Context, userID uuid.UUID) ([]*types.PertResponse, error) {
	return ps.responses.ListCurrentByUser(ctx, nil, userID)
}

func (ps *pertService) History(ctx context.Context, userID, competencyID uuid.UUID) ([]*types.PertResponse, error) {
	versions, err := ps.responses.ListVersions(ctx, nil, userID, competencyID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no response exists for competency %s: %w", competencyID, apierr.ErrNotFound)
	}
	return versions, nil
}

// saveNewVersion runs the archive-then-insert protocol in one transaction.
// The unique (user, competency, version) index turns a concurrent save into
// a duplicate-key error, reported as a conflict for the caller to retry.
func (ps *pertService) saveNewVersion(ctx context.Context, response *types.PertResponse) (*types.PertResponse, error) {
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := ps.responses.GetCurrent(ctx, tx, response.UserID, response.CompetencyID)
		if err != nil {
			return err
		}
		if current != nil {
			if err := ps.responses.Archive(ctx, tx, current); err != nil {
				return err
			}
		}

		maxVersion, err := ps.responses.MaxVersion(ctx, tx, response.UserID, response.CompetencyID)
		if err != nil {
			return err
		}
		response.Version = maxVersion + 1
		response.IsCurrent = true

		_, err = ps.responses.Insert(ctx, tx, response)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("concurrent edit of the same response: %w", apierr.ErrConflict)
		}
		return nil, err
	}
	return response, nil
}

func (ps *pertService) buildResponse(userID, competencyID, experienceID uuid.UUID, level int, sections StarSections) *types.PertResponse {
	text := RenderResponseText(sections)
	count := utf8.RuneCountInString(text)
	impact := detectQuantifiedImpact(sections.Result)

	return &types.PertResponse{
		UserID:           userID,
		CompetencyID:     competencyID,
		ExperienceID:     experienceID,
		ProficiencyLevel: level,
		Situation:        sections.Situation,
		Task:             sections.Task,
		Action:           sections.Action,
		Result:           sections.Result,
		ResponseText:     text,
		CharacterCount:   count,
		QuantifiedImpact: impact,
		IsCompliant:      sectionsComplete(sections) && count <= ps.policy.MaxCharacters && impact != "",
	}
}

func (ps *pertService) draftStar(ctx context.Context, experience *types.Experience, competency *types.Competency, level int) (StarSections, error) {
	userPrompt := buildStarUserPrompt(experience, competency, level)
	started := time.Now()

	completion, err := ps.aiClient.Chat(ctx, []AIMessage{
		{Role: "system", Content: starSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, &AIOptions{Temperature: 0.4, MaxTokens: 2048})

	raw := ""
	if completion != nil {
		raw = completion.Content
	}
	ps.auditor.Record(ctx, AICallRecord{
		UserID:   requestdata.UserID(ctx),
		CallType: "pert_generation",
		Model:    ps.aiClient.Model(),
		Prompt:   userPrompt,
		Response: raw,
		Err:      err,
		Started:  started,
	})
	if err != nil {
		return StarSections{}, err
	}

	sections, err := ParseResponseText(strings.TrimSpace(raw))
	if err != nil {
		return StarSections{}, fmt.Errorf("provider output is not a STAR response: %w", err)
	}
	if err := validateSections(sections); err != nil {
		return StarSections{}, fmt.Errorf("provider output has empty sections: %w", err)
	}
	return sections, nil
}

func validateSections(s StarSections) error {
	for _, section := range []struct {
		name string
		text string
	}{
		{"situation", s.Situation},
		{"task", s.Task},
		{"action", s.Action},
		{"result", s.Result},
	} {
		if strings.TrimSpace(section.text) == "" {
			return fmt.Errorf("%s section is empty: %w", section.name, apierr.ErrValidation)
		}
	}
	return nil
}

// detectQuantifiedImpact returns the first sentence of the result section
// containing a number, percentage or dollar figure. Empty when the result
// carries no measurable outcome.
func detectQuantifiedImpact(result string) string {
	for _, sentence := range splitSentences(result) {
		for _, r := range sentence {
			if unicode.IsDigit(r) || r == '%' || r == '$' {
				return sentence
			}
		}
	}
	return ""
}
