package highlights

import (
	"regexp"
	"strings"
)

var (
	reNum      = regexp.MustCompile(`\b\d+(?:[\.,]\d+)?%?`)
	reHook     = regexp.MustCompile(`(?i)\b(important|key|secret|mistake|never|always|surprising|here\s+is\s+why|remember)\b`)
	reHow      = regexp.MustCompile(`(?i)\b(how\s+to|step\s+\d+|first|second|third|because|means)\b`)
	reLesson   = regexp.MustCompile(`(?i)\b(lesson|takeaway|tip|rule\s+of\s+thumb|trick|myth)s?\b`)
	reContrast = regexp.MustCompile(`(?i)\b(but|however|instead|turns\s+out)\b`)
	reStepNum  = regexp.MustCompile(`(?i)\bstep\s+\d+\b`)
)

// Score rates one narration sentence as (info, hook), each in [0..10].
// info favours figures and instructional wording; hook favours emphatic or
// contrasting phrasing. Long sentences are penalised per word.
func Score(text string) (float64, float64) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, 0
	}
	lower := strings.ToLower(t)

	info := float64(len(reNum.FindAllStringIndex(t, -1))) * 0.4
	if reHow.MatchString(lower) {
		info += 1.2
	}
	if reLesson.MatchString(lower) {
		info += 0.8
	}
	info -= 0.02 * float64(len(strings.Fields(t)))

	hook := float64(len(reHook.FindAllStringIndex(lower, -1))) * 0.9
	hook += float64(len(reStepNum.FindAllStringIndex(lower, -1))) * 0.4
	hook += float64(len(reContrast.FindAllStringIndex(lower, -1))) * 0.5
	hook += float64(strings.Count(t, "?")) * 0.7
	hook += float64(strings.Count(t, "!")) * 0.3

	return clamp(info, 0, 10), clamp(hook, 0, 10)
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
