package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pathfinder-hq/pathfinder-backend/internal/logger"
	"github.com/pathfinder-hq/pathfinder-backend/internal/utils"
)

// Policy holds the tunable business rules: score thresholds, the PERT
// character ceiling and the EVR compliance rule numbers. The thresholds are
// policy, not constants, so they live here rather than in the services.
type Policy struct {
	Scoring    ScoringPolicy    `yaml:"scoring"`
	Pert       PertPolicy       `yaml:"pert"`
	Compliance CompliancePolicy `yaml:"compliance"`
}

type ScoringPolicy struct {
	// MinRelevance is the persistence floor: mappings scoring below it are
	// not recorded at all.
	MinRelevance    float64 `yaml:"min_relevance"`
	Level1Threshold float64 `yaml:"level1_threshold"`
	Level2Threshold float64 `yaml:"level2_threshold"`
	// AIWeight is the blend weight given to the semantic score when the
	// provider call succeeds; the keyword score carries the remainder.
	AIWeight float64 `yaml:"ai_weight"`
	// MaxEvidence caps how many verbatim quotes a mapping carries.
	MaxEvidence int `yaml:"max_evidence"`
}

type PertPolicy struct {
	MaxCharacters int `yaml:"max_characters"`
}

type CompliancePolicy struct {
	MinCompetencies int `yaml:"min_competencies"`
	MinLevel2       int `yaml:"min_level2"`
	WindowMonths    int `yaml:"window_months"`
	RecencyMonths   int `yaml:"recency_months"`
}

func DefaultPolicy() Policy {
	return Policy{
		Scoring: ScoringPolicy{
			MinRelevance:    0.5,
			Level1Threshold: 0.7,
			Level2Threshold: 0.9,
			AIWeight:        0.7,
			MaxEvidence:     5,
		},
		Pert: PertPolicy{
			MaxCharacters: 5000,
		},
		Compliance: CompliancePolicy{
			MinCompetencies: 8,
			MinLevel2:       2,
			WindowMonths:    30,
			RecencyMonths:   12,
		},
	}
}

// LoadPolicy reads the policy file named by PATHFINDER_POLICY_FILE (default
// policy.yaml). A missing file is not an error; defaults apply. A file that
// exists but does not parse is an error, so a typo never silently reverts
// the rules to defaults.
func LoadPolicy(log *logger.Logger) (Policy, error) {
	policy := DefaultPolicy()

	path := utils.GetEnv("PATHFINDER_POLICY_FILE", "policy.yaml", log)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if log != nil {
				log.Info("No policy file found, using defaults", "path", path)
			}
			return policy, nil
		}
		return policy, fmt.Errorf("read policy file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	if log != nil {
		log.Info("Loaded policy file", "path", path)
	}
	return policy, nil
}

func (p Policy) Validate() error {
	s := p.Scoring
	if s.MinRelevance < 0 || s.MinRelevance > 1 {
		return fmt.Errorf("scoring.min_relevance must be in [0,1], got %v", s.MinRelevance)
	}
	if s.Level1Threshold < s.MinRelevance || s.Level1Threshold > 1 {
		return fmt.Errorf("scoring.level1_threshold must be in [min_relevance,1], got %v", s.Level1Threshold)
	}
	if s.Level2Threshold < s.Level1Threshold || s.Level2Threshold > 1 {
		return fmt.Errorf("scoring.level2_threshold must be in [level1_threshold,1], got %v", s.Level2Threshold)
	}
	if s.AIWeight < 0 || s.AIWeight > 1 {
		return fmt.Errorf("scoring.ai_weight must be in [0,1], got %v", s.AIWeight)
	}
	if s.MaxEvidence < 1 {
		return fmt.Errorf("scoring.max_evidence must be >= 1, got %d", s.MaxEvidence)
	}
	if p.Pert.MaxCharacters < 1 {
		return fmt.Errorf("pert.max_characters must be >= 1, got %d", p.Pert.MaxCharacters)
	}
	c := p.Compliance
	if c.MinCompetencies < 1 || c.MinLevel2 < 0 || c.MinLevel2 > c.MinCompetencies {
		return fmt.Errorf("compliance competency counts are inconsistent: min=%d level2=%d", c.MinCompetencies, c.MinLevel2)
	}
	if c.WindowMonths < 1 || c.RecencyMonths < 1 {
		return fmt.Errorf("compliance windows must be >= 1 month: window=%d recency=%d", c.WindowMonths, c.RecencyMonths)
	}
	return nil
}
