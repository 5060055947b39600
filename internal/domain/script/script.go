package script

import (
	"regexp"
	"strings"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

var (
	reFence      = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`([^`]*)`")
	reImage      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	reURL        = regexp.MustCompile(`https?://\S+`)
	reHeading    = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)
	reBullet     = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+[.)])[ \t]+`)
	reQuote      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	reEmphasis   = regexp.MustCompile(`(\*\*|__|\*|_|~~)([^*_~\n]+)(\*\*|__|\*|_|~~)`)
	reHTMLTag    = regexp.MustCompile(`<[^>]+>`)
	reSpaces     = regexp.MustCompile(`[ \t\f\v]+`)
	reBlank      = regexp.MustCompile(`\n\s*\n+`)
)

// Normalize turns markdown-ish blog text into plain prose suitable for
// narration. Paragraphs stay separated by one blank line.
func Normalize(text string) string {
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = reFence.ReplaceAllString(t, "")
	t = reImage.ReplaceAllString(t, "")
	t = reLink.ReplaceAllString(t, "$1")
	t = reURL.ReplaceAllString(t, "")
	t = reInlineCode.ReplaceAllString(t, "$1")
	t = reHTMLTag.ReplaceAllString(t, "")
	t = reHeading.ReplaceAllString(t, "")
	t = reBullet.ReplaceAllString(t, "")
	t = reQuote.ReplaceAllString(t, "")
	t = reEmphasis.ReplaceAllString(t, "$2")

	paras := reBlank.Split(t, -1)
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		lines := strings.Split(p, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(reSpaces.ReplaceAllString(l, " "))
		}
		p = strings.TrimSpace(strings.Join(lines, " "))
		p = reSpaces.ReplaceAllString(p, " ")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}

// Compose builds the narration for one article: a short intro naming the
// title, the normalized body, and a closing line.
func Compose(a types.Article) string {
	title := strings.TrimSpace(Normalize(a.Title))
	body := Normalize(a.Body)

	var parts []string
	if title != "" {
		parts = append(parts, "Welcome. Today's episode is "+ensureTerminal(title))
	}
	if body != "" {
		parts = append(parts, body)
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, "Thanks for listening.")
	return strings.Join(parts, "\n\n")
}

// Join concatenates scripts with paragraph breaks, skipping empty ones.
func Join(scripts []string) string {
	var out []string
	for _, s := range scripts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n\n")
}

func ensureTerminal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}
