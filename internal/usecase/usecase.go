package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/UDaygupta12512/blogcast/internal/domain/highlights"
	"github.com/UDaygupta12512/blogcast/internal/domain/script"
	"github.com/UDaygupta12512/blogcast/internal/domain/subtitles"
	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/ports"
	"github.com/UDaygupta12512/blogcast/internal/types"
)

var ErrNoTransformer = errors.New("a language model is required for summaries and translation")

type Deps struct {
	Source ports.ContentSource
	// LLM is optional. Without it several sources are joined in order and
	// highlights come from the local scorer.
	LLM ports.Transformer
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Refs         []string
	Rate         float64
	Summarize    bool
	SummaryWords int
	Language     string
	HighlightsN  int
	OutDir       string
	Logf         func(format string, args ...any)
}

type Result struct {
	Manifest types.Manifest
}

const (
	scriptFile = "script.txt"
	vttFile    = "subtitles.vtt"
	srtFile    = "subtitles.srt"
	assFile    = "subtitles.ass"
)

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if len(in.Refs) == 0 {
		return Result{}, errors.New("at least one source is required")
	}
	if err := timing.CheckRate(in.Rate); err != nil {
		return Result{}, err
	}
	if (in.Summarize || in.Language != "") && u.d.LLM == nil {
		return Result{}, ErrNoTransformer
	}

	// fetch + compose
	var (
		scripts []string
		titles  []string
	)
	for _, ref := range in.Refs {
		a, err := u.d.Source.Fetch(ctx, ref)
		if err != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", ref, err)
		}
		s := script.Compose(a)
		logf("fetched %s (%d words)", ref, timing.CountWords(s))
		scripts = append(scripts, s)
		if t := strings.TrimSpace(a.Title); t != "" {
			titles = append(titles, t)
		}
	}

	narration, err := u.combine(ctx, scripts, logf)
	if err != nil {
		return Result{}, err
	}
	if in.Summarize {
		logf("summarizing to %d words", in.SummaryWords)
		if narration, err = u.d.LLM.Summarize(ctx, narration, in.SummaryWords); err != nil {
			return Result{}, fmt.Errorf("summarize: %w", err)
		}
	}
	if in.Language != "" {
		logf("translating to %s", in.Language)
		if narration, err = u.d.LLM.Translate(ctx, narration, in.Language); err != nil {
			return Result{}, fmt.Errorf("translate: %w", err)
		}
	}
	if strings.TrimSpace(narration) == "" {
		return Result{}, errors.New("sources produced no narration text")
	}

	// timing
	segs, err := timing.Segment(narration, in.Rate)
	if err != nil {
		return Result{}, err
	}
	estimate, err := timing.EstimateDuration(narration)
	if err != nil {
		return Result{}, err
	}
	logf("%d captions, estimated duration %s", len(segs), estimate)

	hs := u.highlights(ctx, narration, segs, in.HighlightsN, logf)

	// outputs
	files := types.ManifestFiles{Script: scriptFile, VTT: vttFile, SRT: srtFile, ASS: assFile}
	if err := writeFile(filepath.Join(in.OutDir, scriptFile), []byte(narration+"\n")); err != nil {
		return Result{}, err
	}
	for name, f := range map[string]subtitles.Format{
		vttFile: subtitles.FormatVTT,
		srtFile: subtitles.FormatSRT,
		assFile: subtitles.FormatASS,
	} {
		out, err := subtitles.Render(f, segs)
		if err != nil {
			return Result{}, err
		}
		if err := writeFile(filepath.Join(in.OutDir, name), []byte(out)); err != nil {
			return Result{}, err
		}
	}

	m := types.Manifest{
		Title:             episodeTitle(titles),
		Sources:           append([]string(nil), in.Refs...),
		Language:          in.Language,
		Rate:              in.Rate,
		EstimatedDuration: estimate,
		Words:             timing.CountWords(narration),
		Script:            narration,
		Segments:          segs,
		Highlights:        make([]types.ManifestHighlight, 0, len(hs)),
		Files:             files,
	}
	for _, h := range hs {
		m.Highlights = append(m.Highlights, types.ManifestHighlight{
			Segment:   h.Index,
			StartSec:  h.Start.Seconds(),
			EndSec:    h.End.Seconds(),
			Text:      h.Text,
			InfoScore: h.InfoScore,
			HookScore: h.HookScore,
		})
	}
	return Result{Manifest: m}, nil
}

func (u Usecase) combine(ctx context.Context, scripts []string, logf func(string, ...any)) (string, error) {
	if len(scripts) == 1 || u.d.LLM == nil {
		return script.Join(scripts), nil
	}
	logf("merging %d scripts", len(scripts))
	merged, err := u.d.LLM.Merge(ctx, scripts)
	if err != nil {
		return "", fmt.Errorf("merge: %w", err)
	}
	return merged, nil
}

// highlights asks the model first and falls back to local scoring when it is
// unavailable, fails, or names nothing that appears in the captions.
func (u Usecase) highlights(ctx context.Context, narration string, segs []types.SubtitleSegment, n int, logf func(string, ...any)) []types.Highlight {
	if n <= 0 {
		return nil
	}
	if u.d.LLM != nil {
		texts, err := u.d.LLM.Highlights(ctx, narration, n)
		if err != nil {
			logf("model highlights failed, using local scoring: %v", err)
		} else if hs := highlights.Locate(segs, texts); len(hs) > 0 {
			if len(hs) > n {
				hs = hs[:n]
			}
			return hs
		} else {
			logf("model highlights matched no captions, using local scoring")
		}
	}
	return highlights.Extract(segs, n)
}

func episodeTitle(titles []string) string {
	switch len(titles) {
	case 0:
		return "Untitled episode"
	case 1:
		return titles[0]
	default:
		return fmt.Sprintf("%s and %d more", titles[0], len(titles)-1)
	}
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
