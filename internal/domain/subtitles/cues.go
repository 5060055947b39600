package subtitles

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

type Format string

const (
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatASS  Format = "ass"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatVTT, FormatSRT, FormatASS, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown subtitle format %q (want vtt, srt, ass or json)", s)
	}
}

// Ext is the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

func Render(f Format, segs []types.SubtitleSegment) (string, error) {
	switch f {
	case FormatVTT:
		return RenderVTT(segs), nil
	case FormatSRT:
		return RenderSRT(segs), nil
	case FormatASS:
		return RenderASS(segs), nil
	case FormatJSON:
		if segs == nil {
			segs = []types.SubtitleSegment{}
		}
		b, err := json.MarshalIndent(segs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal segments: %w", err)
		}
		return string(b) + "\n", nil
	default:
		return "", fmt.Errorf("unknown subtitle format %q", f)
	}
}

func RenderVTT(segs []types.SubtitleSegment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for i, s := range segs {
		fmt.Fprintf(&b, "\n%d\n%s --> %s\n%s\n", i+1, cueTime(s.Start, '.'), cueTime(s.End, '.'), vttEscaper.Replace(sanitizeCue(s.Text)))
	}
	return b.String()
}

func RenderSRT(segs []types.SubtitleSegment) string {
	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, cueTime(s.Start, ','), cueTime(s.End, ','), sanitizeCue(s.Text))
	}
	return b.String()
}

// cueTime formats HH:MM:SS.mmm; SRT uses a comma before the milliseconds.
func cueTime(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	milli := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hs, ms, s, sep, milli)
}

// vttEscaper escapes the characters WebVTT cue text treats as markup.
var vttEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")

// sanitizeCue keeps a cue on one line and out of the "-->" timing syntax.
func sanitizeCue(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "-->", "->")
}
