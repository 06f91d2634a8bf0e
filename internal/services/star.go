package services

import (
	"fmt"
	"strings"
)

// The literal section headers of a rendered PERT response. Export and report
// generation depend on this exact byte layout, so render and parse must
// round-trip for any sections that do not themselves contain a header token.
const (
	headerSituation = "SITUATION:"
	headerTask      = "TASK:"
	headerAction    = "ACTION:"
	headerResult    = "RESULT:"
)

type StarSections struct {
	Situation string
	Task      string
	Action    string
	Result    string
}

// RenderResponseText concatenates the four STAR sections with their literal
// headers, separated by blank lines.
func RenderResponseText(s StarSections) string {
	return headerSituation + "\n" + s.Situation +
		"\n\n" + headerTask + "\n" + s.Task +
		"\n\n" + headerAction + "\n" + s.Action +
		"\n\n" + headerResult + "\n" + s.Result
}

// sectionsComplete reports whether all four sections carry text beyond
// whitespace. A response missing a section can never be compliant.
func sectionsComplete(s StarSections) bool {
	return strings.TrimSpace(s.Situation) != "" &&
		strings.TrimSpace(s.Task) != "" &&
		strings.TrimSpace(s.Action) != "" &&
		strings.TrimSpace(s.Result) != ""
}

// ParseResponseText is the inverse of RenderResponseText.
func ParseResponseText(text string) (StarSections, error) {
	var out StarSections

	if !strings.HasPrefix(text, headerSituation+"\n") {
		return out, fmt.Errorf("response text does not start with %s", headerSituation)
	}
	rest := text[len(headerSituation)+1:]

	taskSep := "\n\n" + headerTask + "\n"
	idx := strings.Index(rest, taskSep)
	if idx < 0 {
		return out, fmt.Errorf("response text missing %s section", headerTask)
	}
	out.Situation = rest[:idx]
	rest = rest[idx+len(taskSep):]

	actionSep := "\n\n" + headerAction + "\n"
	idx = strings.Index(rest, actionSep)
	if idx < 0 {
		return out, fmt.Errorf("response text missing %s section", headerAction)
	}
	out.Task = rest[:idx]
	rest = rest[idx+len(actionSep):]

	resultSep := "\n\n" + headerResult + "\n"
	idx = strings.Index(rest, resultSep)
	if idx < 0 {
		return out, fmt.Errorf("response text missing %s section", headerResult)
	}
	out.Action = rest[:idx]
	out.Result = rest[idx+len(resultSep):]

	return out, nil
}
