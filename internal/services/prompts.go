package services

import (
	"fmt"
	"strings"

	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

const relevanceSystemPrompt = `You are an assessor for the CPA practical experience program.
Given a professional experience description and one competency from the CPA
competency map, rate how strongly the experience demonstrates that competency.
Reply with a single decimal number between 0.0 and 1.0 and nothing else.`

func buildRelevanceUserPrompt(experienceText string, competency *types.Competency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Competency %s — %s / %s\n", competency.Code, competency.AreaName, competency.SubName)
	fmt.Fprintf(&b, "Description: %s\n", competency.Description)
	fmt.Fprintf(&b, "Level 1 criteria: %s\n", competency.Level1Criteria)
	fmt.Fprintf(&b, "Level 2 criteria: %s\n", competency.Level2Criteria)
	fmt.Fprintf(&b, "\nExperience description:\n%s\n", experienceText)
	b.WriteString("\nRelevance score (0.0-1.0):")
	return b.String()
}

const starSystemPrompt = `You write PERT experience responses for CPA candidates.
Produce a STAR narrative demonstrating the requested competency at the
requested proficiency level, grounded strictly in the candidate's own
experience description. Do not invent facts. Write in the first person.
Output exactly four sections with these literal headers, each followed by its
text, separated by blank lines, and nothing else:

SITUATION:
<text>

TASK:
<text>

ACTION:
<text>

RESULT:
<text>`

func buildStarUserPrompt(experience *types.Experience, competency *types.Competency, proficiencyLevel int) string {
	criteria := competency.Level1Criteria
	if proficiencyLevel >= 2 {
		criteria = competency.Level2Criteria
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Competency %s — %s / %s\n", competency.Code, competency.AreaName, competency.SubName)
	fmt.Fprintf(&b, "Target proficiency level: %d\n", proficiencyLevel)
	fmt.Fprintf(&b, "Level criteria to demonstrate: %s\n", criteria)
	fmt.Fprintf(&b, "\nExperience title: %s\n", experience.Title)
	fmt.Fprintf(&b, "Experience description:\n%s\n", experience.Description)
	b.WriteString("\nKeep the whole response under 4500 characters.")
	return b.String()
}
