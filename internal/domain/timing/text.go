package timing

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	sentenceDelimRE = regexp.MustCompile(`[.!?]+`)
	sentencePauseRE = regexp.MustCompile(`\.\s`)
	questionPauseRE = regexp.MustCompile(`\?\s`)
)

// Sentences splits text on runs of '.', '!' and '?' and returns the
// trimmed, non-empty pieces in order.
func Sentences(text string) []string {
	parts := sentenceDelimRE.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CountWords counts whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

func checkText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidArgument)
	}
	return nil
}
