package highlights

import (
	"sort"
	"strings"
	"unicode"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

// Extract picks the n highest scoring segments and returns them in timeline
// order. Segments that score zero on both axes are never picked.
func Extract(segs []types.SubtitleSegment, n int) []types.Highlight {
	if n <= 0 || len(segs) == 0 {
		return nil
	}

	all := make([]types.Highlight, 0, len(segs))
	for i, s := range segs {
		info, hook := Score(s.Text)
		if info+hook <= 0 {
			continue
		}
		all = append(all, toHighlight(i, s, info, hook))
	}
	sort.SliceStable(all, func(i, j int) bool {
		s1 := all[i].InfoScore + all[i].HookScore
		s2 := all[j].InfoScore + all[j].HookScore
		if s1 == s2 {
			return all[i].Index < all[j].Index
		}
		return s1 > s2
	})
	if len(all) > n {
		all = all[:n]
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Index < all[j].Index })
	return all
}

// Locate maps free-form highlight texts (as returned by a language model) onto
// the segments that contain them. Texts that match nothing are dropped and a
// segment is reported at most once.
func Locate(segs []types.SubtitleSegment, texts []string) []types.Highlight {
	norms := make([]string, len(segs))
	for i, s := range segs {
		norms[i] = normalize(s.Text)
	}

	seen := make(map[int]bool, len(texts))
	var out []types.Highlight
	for _, t := range texts {
		idx := locate(norms, normalize(t))
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		info, hook := Score(segs[idx].Text)
		out = append(out, toHighlight(idx, segs[idx], info, hook))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// locate returns the caption that matches want, preferring an exact match,
// then a caption that contains want as whole words, then a caption that makes
// up most of want. It returns -1 when nothing matches.
func locate(norms []string, want string) int {
	if want == "" {
		return -1
	}
	for i, n := range norms {
		if n == want {
			return i
		}
	}
	padded := " " + want + " "
	for i, n := range norms {
		if n != "" && strings.Contains(" "+n+" ", padded) {
			return i
		}
	}
	for i, n := range norms {
		if n != "" && 2*len(n) > len(want) && strings.Contains(padded, " "+n+" ") {
			return i
		}
	}
	return -1
}

func toHighlight(i int, s types.SubtitleSegment, info, hook float64) types.Highlight {
	return types.Highlight{
		Index:     i,
		Start:     s.Start,
		End:       s.End,
		Text:      s.Text,
		InfoScore: info,
		HookScore: hook,
	}
}

// normalize lowercases and reduces text to letters and digits separated by
// single spaces, so punctuation and spacing differences do not block a match.
func normalize(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
		default:
			space = true
		}
	}
	return b.String()
}
