package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicyIsValid(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestLoadPolicyMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PATHFINDER_POLICY_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	policy, err := LoadPolicy(nil)
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if policy != DefaultPolicy() {
		t.Error("missing file did not yield defaults")
	}
}

func TestLoadPolicyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte(`scoring:
  min_relevance: 0.4
  level1_threshold: 0.6
  level2_threshold: 0.85
pert:
  max_characters: 4000
compliance:
  min_competencies: 6
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	t.Setenv("PATHFINDER_POLICY_FILE", path)

	policy, err := LoadPolicy(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if policy.Scoring.MinRelevance != 0.4 {
		t.Errorf("min_relevance %v, want 0.4", policy.Scoring.MinRelevance)
	}
	if policy.Pert.MaxCharacters != 4000 {
		t.Errorf("max_characters %d, want 4000", policy.Pert.MaxCharacters)
	}
	if policy.Compliance.MinCompetencies != 6 {
		t.Errorf("min_competencies %d, want 6", policy.Compliance.MinCompetencies)
	}
	// Unspecified keys keep their defaults.
	if policy.Scoring.AIWeight != 0.7 {
		t.Errorf("ai_weight %v, want default 0.7", policy.Scoring.AIWeight)
	}
	if policy.Compliance.WindowMonths != 30 {
		t.Errorf("window_months %d, want default 30", policy.Compliance.WindowMonths)
	}
}

func TestLoadPolicyRejectsBadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{{"},
		{"inverted thresholds", "scoring:\n  level1_threshold: 0.9\n  level2_threshold: 0.6\n"},
		{"out of range weight", "scoring:\n  ai_weight: 1.5\n"},
		{"zero ceiling", "pert:\n  max_characters: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "policy.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write policy: %v", err)
			}
			t.Setenv("PATHFINDER_POLICY_FILE", path)
			if _, err := LoadPolicy(nil); err == nil {
				t.Error("expected load error")
			}
		})
	}
}

func TestValidateBounds(t *testing.T) {
	policy := DefaultPolicy()
	policy.Scoring.MinRelevance = -0.1
	if err := policy.Validate(); err == nil {
		t.Error("negative min_relevance accepted")
	}

	policy = DefaultPolicy()
	policy.Compliance.MinLevel2 = 99
	if err := policy.Validate(); err == nil {
		t.Error("min_level2 above min_competencies accepted")
	}

	policy = DefaultPolicy()
	policy.Scoring.MaxEvidence = 0
	if err := policy.Validate(); err == nil {
		t.Error("zero max_evidence accepted")
	}
}
