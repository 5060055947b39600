package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/pipeline"
	"github.com/UDaygupta12512/blogcast/internal/ports/adapters/openrouter"
)

func newEpisodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episode <url|file|->...",
		Short: "Build an episode: narration script, captions and manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpisode(cmd, args)
		},
	}

	// Visible flags
	cmd.Flags().String("out", "out", "Output directory")
	cmd.Flags().Float64("rate", timing.DefaultRate, "Speech rate multiplier")
	cmd.Flags().Bool("summarize", false, "Condense the script with the language model")
	cmd.Flags().Int("summary-words", 250, "Word budget for --summarize")
	cmd.Flags().String("lang", "", "Translate the script into this language")
	cmd.Flags().Int("highlights", 5, "Number of highlights to pick")

	// Hidden tuning flag (internal)
	cmd.Flags().String("browser-bin", "", "Chromium binary for web sources")
	_ = cmd.Flags().MarkHidden("browser-bin")
	return cmd
}

func runEpisode(cmd *cobra.Command, refs []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	rate, _ := cmd.Flags().GetFloat64("rate")
	summarize, _ := cmd.Flags().GetBool("summarize")
	summaryWords, _ := cmd.Flags().GetInt("summary-words")
	lang, _ := cmd.Flags().GetString("lang")
	highlightsN, _ := cmd.Flags().GetInt("highlights")
	browserBin, _ := cmd.Flags().GetString("browser-bin")
	if browserBin == "" {
		browserBin = os.Getenv("BLOGCAST_BROWSER_BIN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		Refs:         refs,
		OutDir:       outDir,
		Rate:         rate,
		Summarize:    summarize,
		SummaryWords: summaryWords,
		Language:     lang,
		Highlights:   highlightsN,
		BrowserBin:   browserBin,
		Logf:         newLogf(cmd.ErrOrStderr()),

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", "anthropic/claude-3.5-sonnet"),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: openrouter.ParseAllowedHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	runDir, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), runDir)
	return nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
