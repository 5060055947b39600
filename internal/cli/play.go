package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/ports"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/simengine"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/wsengine"
	"github.com/UDaygupta12512/blogcast/internal/speech"
	"github.com/UDaygupta12512/blogcast/internal/types"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <script|->",
		Short: "Read a script aloud and show captions as they become active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args[0])
		},
	}
	defaults := speech.DefaultRetryPolicy()
	cmd.Flags().String("engine", "sim", "Speech engine: sim or browser")
	cmd.Flags().String("addr", "127.0.0.1:8765", "Listen address for the browser bridge")
	cmd.Flags().String("voice", "", "Voice name (browser engine)")
	cmd.Flags().Float64("rate", timing.DefaultRate, "Speech rate multiplier")
	cmd.Flags().Int("attempts", defaults.MaxAttempts, "Start attempts before giving up")
	cmd.Flags().Duration("retry-delay", defaults.Delay, "Wait for speech to start before retrying")
	cmd.Flags().Float64("speedup", 1, "Play the simulated engine this many times faster")
	return cmd
}

func runPlay(cmd *cobra.Command, path string) error {
	engineName, _ := cmd.Flags().GetString("engine")
	addr, _ := cmd.Flags().GetString("addr")
	voice, _ := cmd.Flags().GetString("voice")
	rate, _ := cmd.Flags().GetFloat64("rate")
	attempts, _ := cmd.Flags().GetInt("attempts")
	retryDelay, _ := cmd.Flags().GetDuration("retry-delay")
	speedup, _ := cmd.Flags().GetFloat64("speedup")
	if speedup <= 0 {
		return fmt.Errorf("speedup must be > 0")
	}

	text, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logf := newLogf(cmd.ErrOrStderr())

	model := timing.DefaultModel()
	var engine ports.SpeechEngine
	switch engineName {
	case "sim":
		engine = simengine.New(model, speedup)
		model = scaleModel(model, speedup)
	case "browser":
		e, shutdown, err := startBridge(ctx, addr, logf)
		if err != nil {
			return err
		}
		defer shutdown()
		engine = e
	default:
		return fmt.Errorf("unknown engine %q (want sim or browser)", engineName)
	}
	defer engine.Close()

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	session, err := speech.New(engine, speech.Options{
		Voice: voice,
		Rate:  rate,
		Model: model,
		Retry: speech.RetryPolicy{MaxAttempts: attempts, Delay: retryDelay},
		OnCue: func(i int, seg types.SubtitleSegment) {
			if i < 0 {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			printCue(out, i, seg)
		},
		Logf: logf,
	})
	if err != nil {
		return err
	}
	defer session.Dispose()

	return speak(ctx, session, text, logf)
}

// speak plays text to the end. An interrupt, during start or playback,
// stops speech and is not an error.
func speak(ctx context.Context, session *speech.Session, text string, logf func(string, ...any)) error {
	err := session.Start(ctx, text)
	if err == nil {
		err = session.Wait(ctx)
	}
	if errors.Is(err, context.Canceled) {
		session.Stop()
		logf("stopped")
		return nil
	}
	if err != nil {
		return err
	}
	logf("playback %s", session.State())
	return nil
}

var (
	_ ports.SpeechEngine = (*wsengine.Engine)(nil)
	_ ports.SpeechEngine = (*simengine.Engine)(nil)
)

var cueTag = color.New(color.FgGreen).SprintFunc()

func printCue(w io.Writer, i int, seg types.SubtitleSegment) {
	fmt.Fprintf(w, "%s %s\n", cueTag(fmt.Sprintf("[%d %s]", i+1, timing.FormatClock(seg.Start))), seg.Text)
}

// scaleModel compresses a caption timeline to match an engine that plays
// speedup times faster than real time.
func scaleModel(m timing.Model, speedup float64) timing.Model {
	return timing.Model{
		MinSegment:     time.Duration(float64(m.MinSegment) / speedup),
		WordsPerSecond: m.WordsPerSecond * speedup,
		Gap:            time.Duration(float64(m.Gap) / speedup),
	}
}

// startBridge serves the browser speech bridge on addr and waits for a page
// to connect.
func startBridge(ctx context.Context, addr string, logf func(string, ...any)) (*wsengine.Engine, func(), error) {
	e := wsengine.New()
	e.Logf = logf

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: e, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logf("speech bridge server failed: %v", err)
		}
	}()
	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}

	url := "http://" + ln.Addr().String()
	if strings.HasPrefix(ln.Addr().String(), "[::]") || strings.HasPrefix(ln.Addr().String(), "0.0.0.0") {
		url = "http://" + addr
	}
	logf("open %s in a browser to start speaking", url)
	if err := e.WaitConnected(ctx); err != nil {
		shutdown()
		_ = e.Close()
		return nil, nil, err
	}
	return e, shutdown, nil
}
