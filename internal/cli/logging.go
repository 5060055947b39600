package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	tagInfo = color.New(color.FgCyan, color.Bold).SprintFunc()
	tagWarn = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// newLogf returns the progress logger handed to the pipeline and session.
// Messages that report a failure or fallback get a warning tag.
func newLogf(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		tag := tagInfo("blogcast")
		if isWarning(msg) {
			tag = tagWarn("blogcast")
		}
		fmt.Fprintf(w, "%s %s\n", tag, msg)
	}
}

func isWarning(msg string) bool {
	l := strings.ToLower(msg)
	for _, k := range []string{"failed", "timed out", "offline", "disconnected", "falling back"} {
		if strings.Contains(l, k) {
			return true
		}
	}
	return false
}
