package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/UDaygupta12512/blogcast/internal/domain/subtitles"
	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/simengine"
	"github.com/UDaygupta12512/blogcast/internal/speech"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestEstimateCmd(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"empty", "", []string{"estimate", "-"}, "0:00\n"},
		{"one sentence", "Hello world.", []string{"estimate", "-"}, "0:01\n"},
		{"verbose", "Hello world. Again here.", []string{"estimate", "-v", "-"}, "(4 words, 2 sentences)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("expected %q in output, got %q", tt.want, out)
			}
		})
	}
}

func TestEstimateCmd_InvalidUTF8(t *testing.T) {
	if _, _, err := execute(t, "bad \xff", "estimate", "-"); err == nil {
		t.Fatalf("expected error for invalid utf-8")
	}
}

func TestSubtitlesCmd(t *testing.T) {
	out, _, err := execute(t, "Hello world. Second one here.", "subtitles", "--format", "srt", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "1\n00:00:00,000 --> 00:00:02,500\nHello world.\n") {
		t.Fatalf("unexpected srt output %q", out)
	}

	path := filepath.Join(t.TempDir(), "subs.vtt")
	if _, _, err := execute(t, "Hello world.", "subtitles", "-o", path, "-"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "WEBVTT") {
		t.Fatalf("unexpected vtt file %q", b)
	}
}

func TestSubtitlesCmd_Errors(t *testing.T) {
	tests := [][]string{
		{"subtitles", "--format", "txt", "-"},
		{"subtitles", "--rate", "0", "-"},
		{"subtitles", "--rate", "nope", "-"},
		{"subtitles"},
		{"subtitles", filepath.Join(t.TempDir(), "missing.txt")},
	}
	for _, args := range tests {
		if _, _, err := execute(t, "Hello.", args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestEpisodeCmd_ConfigErrors(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, _, err := execute(t, "", "episode", "--summarize", "post.md")
	if err == nil || !strings.Contains(err.Error(), "config: OPENROUTER_API_KEY") {
		t.Fatalf("expected config error, got %v", err)
	}
	_, _, err = execute(t, "", "episode", "--rate=-1", "post.md")
	if err == nil || !strings.HasPrefix(err.Error(), "config:") {
		t.Fatalf("expected config error, got %v", err)
	}
	if _, _, err := execute(t, "", "episode"); err == nil {
		t.Fatalf("expected error without sources")
	}
}

func TestEpisodeCmd_Offline(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	tmp := t.TempDir()
	post := filepath.Join(tmp, "post.md")
	if err := os.WriteFile(post, []byte("# Title\n\nThe key idea is here. Another sentence."), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "", "episode", "--out", filepath.Join(tmp, "out"), post)
	if err != nil {
		t.Fatalf("episode: %v", err)
	}
	runDir := strings.TrimSpace(out)
	if _, err := os.Stat(filepath.Join(runDir, "manifest.json")); err != nil {
		t.Fatalf("missing manifest in %q: %v", runDir, err)
	}
}

func TestPlayCmd_Sim(t *testing.T) {
	out, _, err := execute(t, "Hello world. Second sentence.", "play", "--speedup", "50", "-")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Hello world.") {
		t.Fatalf("expected first caption in output, got %q", out)
	}
}

func TestPlayCmd_Errors(t *testing.T) {
	tests := [][]string{
		{"play", "--engine", "tts", "-"},
		{"play", "--speedup", "0", "-"},
		{"play", "--rate", "0", "-"},
		{"play", "--attempts", "0", "-"},
	}
	for _, args := range tests {
		if _, _, err := execute(t, "Hello.", args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestSpeak_InterruptIsNotAnError(t *testing.T) {
	eng := simengine.New(timing.DefaultModel(), 1)
	defer eng.Close()
	session, err := speech.New(eng, speech.Options{Rate: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer session.Dispose()

	var logs []string
	logf := func(format string, args ...any) { logs = append(logs, format) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := speak(ctx, session, "Interrupted before it starts.", logf); err != nil {
		t.Fatalf("interrupt must not fail the command: %v", err)
	}
	if len(logs) == 0 || logs[len(logs)-1] != "stopped" {
		t.Fatalf("expected a stopped log line, got %v", logs)
	}
	if st := session.State(); st == speech.StatePlaying || st == speech.StateStarting {
		t.Fatalf("session still active after interrupt: %s", st)
	}
}

func TestScaleModel(t *testing.T) {
	m := scaleModel(timing.DefaultModel(), 2)
	if m.MinSegment != 1250*time.Millisecond || m.Gap != 400*time.Millisecond || m.WordsPerSecond != 4.4 {
		t.Fatalf("unexpected scaled model %+v", m)
	}
}

func TestWriteCaptions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ep.txt")
	if err := os.WriteFile(src, []byte("Hello world."), 0o644); err != nil {
		t.Fatal(err)
	}
	dst, err := writeCaptions(src, subtitles.FormatSRT, 1)
	if err != nil {
		t.Fatal(err)
	}
	if dst != filepath.Join(dir, "ep.srt") {
		t.Fatalf("unexpected destination %s", dst)
	}
	if _, err := writeCaptions(filepath.Join(dir, "none.txt"), subtitles.FormatVTT, 1); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestCaptionWatcher(t *testing.T) {
	dir := t.TempDir()
	w := captionWatcher{dir: dir, format: subtitles.FormatVTT, rate: 1, logf: func(string, ...any) {}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "ep.txt"), []byte("Watched script."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("Ignored."), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		b, err := os.ReadFile(filepath.Join(dir, "ep.vtt"))
		if err == nil && strings.Contains(string(b), "Watched script.") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("captions were not written")
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.vtt")); !os.IsNotExist(err) {
		t.Fatalf("non-script files must be ignored, stat err=%v", err)
	}
}

func TestIsWarning(t *testing.T) {
	if !isWarning("model highlights failed, using local scoring") || isWarning("manifest written") {
		t.Fatalf("unexpected warning classification")
	}
}
