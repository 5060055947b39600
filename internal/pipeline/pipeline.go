package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/ports"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/filesource"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/openrouter"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/rodpage"
	"github.com/UDaygupta12512/blogcast/internal/types"
	"github.com/UDaygupta12512/blogcast/internal/usecase"
)

type Config struct {
	Refs         []string
	OutDir       string
	Rate         float64
	Summarize    bool
	SummaryWords int
	Language     string
	Highlights   int
	Logf         func(format string, args ...any)

	// BrowserBin overrides the Chromium binary used for web sources.
	BrowserBin string

	// An empty API key runs the episode offline.
	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string
}

func (c Config) Validate() error {
	if len(c.Refs) == 0 {
		return errors.New("at least one source is required")
	}
	for _, ref := range c.Refs {
		if strings.TrimSpace(ref) == "" {
			return errors.New("source is empty")
		}
	}
	if err := timing.CheckRate(c.Rate); err != nil {
		return err
	}
	if c.SummaryWords <= 0 && c.Summarize {
		return fmt.Errorf("summary words must be > 0")
	}
	if c.Highlights < 0 {
		return fmt.Errorf("highlights must be >= 0")
	}
	if (c.Summarize || c.Language != "") && c.OpenRouterAPIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required for summaries and translation")
	}
	if c.OpenRouterAPIKey == "" {
		return nil
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

// Run builds one episode and returns the directory it was written to.
func Run(ctx context.Context, cfg Config) (string, error) {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	// adapters
	deps := usecase.Deps{
		Source: sourceRouter{
			file: filesource.New(),
			web:  rodpage.New(cfg.BrowserBin),
		},
	}
	if cfg.OpenRouterAPIKey != "" {
		deps.LLM = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	} else {
		logf("no OPENROUTER_API_KEY: running offline")
	}
	uc := usecase.New(deps)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.Refs[0], time.Now().UTC())
	logf("preparing workspace")
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return "", err
	}
	logf("output run dir: %s", runOutDir)

	res, err := uc.Run(ctx, usecase.Input{
		Refs:         cfg.Refs,
		Rate:         cfg.Rate,
		Summarize:    cfg.Summarize,
		SummaryWords: cfg.SummaryWords,
		Language:     cfg.Language,
		HighlightsN:  cfg.Highlights,
		OutDir:       runOutDir,
		Logf:         logf,
	})
	if err != nil {
		return "", err
	}

	m := res.Manifest
	m.ID = uuid.NewString()
	if err := writeManifest(filepath.Join(runOutDir, "manifest.json"), m); err != nil {
		return "", err
	}
	logf("manifest written (%d captions, %d highlights, ~%s)", len(m.Segments), len(m.Highlights), m.EstimatedDuration)
	return runOutDir, nil
}

func writeManifest(path string, m types.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

// sourceRouter sends http(s) references to the browser and everything else
// to the local file reader.
type sourceRouter struct {
	file ports.ContentSource
	web  ports.ContentSource
}

func (r sourceRouter) Fetch(ctx context.Context, ref string) (types.Article, error) {
	if isWebRef(ref) {
		return r.web.Fetch(ctx, ref)
	}
	return r.file.Fetch(ctx, ref)
}

func isWebRef(ref string) bool {
	l := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func buildRunOutDir(outRoot, ref string, now time.Time) string {
	name := refName(ref)
	name = normalizePathSegment(name)
	if name == "" {
		name = "episode"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", ref, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

// refName picks the most descriptive path element of a file path or URL.
func refName(ref string) string {
	if isWebRef(ref) {
		ref = strings.SplitN(ref, "?", 2)[0]
		ref = strings.SplitN(ref, "#", 2)[0]
		ref = strings.TrimRight(ref, "/")
		if i := strings.Index(ref, "://"); i >= 0 && !strings.Contains(ref[i+3:], "/") {
			return ref[i+3:]
		}
		return strings.TrimSuffix(ref[strings.LastIndex(ref, "/")+1:], filepath.Ext(ref))
	}
	return strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.ContentSource = (*filesource.Adapter)(nil)
var _ ports.ContentSource = (*rodpage.Adapter)(nil)
var _ ports.Transformer = (*openrouter.Adapter)(nil)
