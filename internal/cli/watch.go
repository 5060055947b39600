package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/UDaygupta12512/blogcast/internal/domain/subtitles"
	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
)

const (
	pollInterval = time.Second
	settleDelay  = 50 * time.Millisecond
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Write captions next to every .txt script saved in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, _ := cmd.Flags().GetFloat64("rate")
			format, _ := cmd.Flags().GetString("format")
			f, err := subtitles.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := timing.CheckRate(rate); err != nil {
				return err
			}
			if st, err := os.Stat(args[0]); err != nil {
				return err
			} else if !st.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			w := captionWatcher{dir: args[0], format: f, rate: rate, logf: newLogf(cmd.ErrOrStderr())}
			return w.run(ctx)
		},
	}
	cmd.Flags().Float64("rate", timing.DefaultRate, "Speech rate multiplier")
	cmd.Flags().String("format", string(subtitles.FormatVTT), "Caption format: vtt, srt, ass or json")
	return cmd
}

type captionWatcher struct {
	dir    string
	format subtitles.Format
	rate   float64
	logf   func(format string, args ...any)
}

// run blocks until ctx is done. It prefers fsnotify and falls back to
// polling the directory when the watcher is unavailable or dies.
func (w captionWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logf("fsnotify not available, falling back to polling: %v", err)
		return w.poll(ctx, time.Now())
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logf("failed to close watcher: %v", err)
		}
	}()
	if err := watcher.Add(w.dir); err != nil {
		w.logf("failed to watch %s, falling back to polling: %v", w.dir, err)
		return w.poll(ctx, time.Now())
	}
	w.logf("watching %s for .txt scripts", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				w.logf("fsnotify watcher closed, falling back to polling")
				return w.poll(ctx, time.Now())
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isScript(event.Name) {
				continue
			}
			time.Sleep(settleDelay)
			w.caption(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				w.logf("fsnotify error channel closed, falling back to polling")
				return w.poll(ctx, time.Now())
			}
			w.logf("file watcher error: %v", err)
		}
	}
}

func (w captionWatcher) poll(ctx context.Context, since time.Time) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := time.Now()
			entries, err := os.ReadDir(w.dir)
			if err != nil {
				w.logf("read %s failed: %v", w.dir, err)
				continue
			}
			for _, e := range entries {
				if e.IsDir() || !isScript(e.Name()) {
					continue
				}
				info, err := e.Info()
				if err != nil || !info.ModTime().After(since) {
					continue
				}
				w.caption(filepath.Join(w.dir, e.Name()))
			}
			since = now
		}
	}
}

func (w captionWatcher) caption(path string) {
	out, err := writeCaptions(path, w.format, w.rate)
	if err != nil {
		w.logf("caption %s failed: %v", path, err)
		return
	}
	w.logf("wrote %s", out)
}

func isScript(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".txt")
}

// writeCaptions renders the script at path into a sibling file with the
// format's extension and returns that file's path.
func writeCaptions(path string, f subtitles.Format, rate float64) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	segs, err := timing.Segment(string(b), rate)
	if err != nil {
		return "", err
	}
	out, err := subtitles.Render(f, segs)
	if err != nil {
		return "", err
	}
	dst := strings.TrimSuffix(path, filepath.Ext(path)) + f.Ext()
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return "", err
	}
	return dst, nil
}
