package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Post.md", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-post-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-post-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestRefName(t *testing.T) {
	tests := map[string]string{
		"posts/why-go.md":                           "why-go",
		"https://blog.example.com/2024/why-go.html": "why-go",
		"https://blog.example.com/why-go/?utm=x#top": "why-go",
		"https://example.com":                       "example.com",
		"-":                                         "-",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := refName(in); got != want {
				t.Fatalf("refName(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Post  ": "my-cool-post",
		"___":              "",
		"abc123":           "abc123",
		"Name (v2)!":       "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{Refs: []string{"post.md"}, Rate: 1}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok offline", func(*Config) {}, ""},
		{"no refs", func(c *Config) { c.Refs = nil }, "at least one source"},
		{"blank ref", func(c *Config) { c.Refs = []string{" "} }, "source is empty"},
		{"zero rate", func(c *Config) { c.Rate = 0 }, "rate must be > 0"},
		{"negative highlights", func(c *Config) { c.Highlights = -1 }, "highlights must be >= 0"},
		{"summary needs key", func(c *Config) { c.Summarize = true; c.SummaryWords = 100 }, "OPENROUTER_API_KEY"},
		{"summary words", func(c *Config) { c.Summarize = true; c.OpenRouterAPIKey = "k" }, "summary words"},
		{"insecure base url", func(c *Config) {
			c.OpenRouterAPIKey = "k"
			c.OpenRouterBaseURL = "http://openrouter.ai"
		}, "https"},
		{"ok online", func(c *Config) {
			c.OpenRouterAPIKey = "k"
			c.OpenRouterBaseURL = "https://openrouter.ai"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSourceRouter(t *testing.T) {
	var got []string
	r := sourceRouter{
		file: fetchFunc(func(ref string) { got = append(got, "file:"+ref) }),
		web:  fetchFunc(func(ref string) { got = append(got, "web:"+ref) }),
	}
	for _, ref := range []string{"a.md", "HTTPS://x.dev/p", "http://localhost/p", "-"} {
		if _, err := r.Fetch(context.Background(), ref); err != nil {
			t.Fatal(err)
		}
	}
	want := "file:a.md,web:HTTPS://x.dev/p,web:http://localhost/p,file:-"
	if strings.Join(got, ",") != want {
		t.Fatalf("unexpected routing %v", got)
	}
}

type fetchFunc func(ref string)

func (f fetchFunc) Fetch(_ context.Context, ref string) (types.Article, error) {
	f(ref)
	return types.Article{Source: ref}, nil
}

func TestRun_OfflineEpisode(t *testing.T) {
	tmp := t.TempDir()
	post := filepath.Join(tmp, "why-go.md")
	body := "# Why Go\n\nGo compiles fast. The key idea is simplicity. Teams ship 2x faster.\n"
	if err := os.WriteFile(post, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	runDir, err := Run(context.Background(), Config{
		Refs:       []string{post},
		OutDir:     filepath.Join(tmp, "out"),
		Rate:       1,
		Highlights: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(runDir), "why-go-") {
		t.Fatalf("unexpected run dir %s", runDir)
	}

	b, err := os.ReadFile(filepath.Join(runDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if _, err := uuid.Parse(m.ID); err != nil {
		t.Fatalf("manifest id is not a uuid: %q", m.ID)
	}
	if m.Title != "Why Go" || len(m.Segments) == 0 || len(m.Highlights) == 0 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	for _, f := range []string{m.Files.Script, m.Files.VTT, m.Files.SRT, m.Files.ASS} {
		if _, err := os.Stat(filepath.Join(runDir, f)); err != nil {
			t.Fatalf("missing output %s: %v", f, err)
		}
	}
}
