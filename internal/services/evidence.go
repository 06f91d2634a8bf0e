package services

import (
	"sort"
	"strings"

	"github.com/pathfinder-hq/pathfinder-backend/internal/types"
)

// ExtractEvidence picks up to max verbatim fragments from the experience
// text, preferring sentences that contain matched competency keywords. The
// returned quotes keep their original order of appearance.
func ExtractEvidence(experienceText string, competency *types.Competency, max int) []string {
	if max < 1 {
		max = 1
	}
	keywords := CompetencyKeywords(competency)

	type scoredSentence struct {
		position int
		text     string
		hits     int
	}

	var candidates []scoredSentence
	for i, sentence := range splitSentences(experienceText) {
		hits := 0
		seen := map[string]bool{}
		for _, token := range tokenize(sentence) {
			if seen[token] {
				continue
			}
			seen[token] = true
			if keywords[token] {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scoredSentence{position: i, text: sentence, hits: hits})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Keep the strongest sentences, then restore document order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})
	if len(candidates) > max {
		candidates = candidates[:max]
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].position < candidates[j].position
	})

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.text)
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?', ';', '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return sentences
}
