package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/UDaygupta12512/blogcast/internal/domain/subtitles"
	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
)

func newSubtitlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtitles <script|->",
		Short: "Render estimated captions for a narration script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rate, _ := cmd.Flags().GetFloat64("rate")
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			f, err := subtitles.ParseFormat(format)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			segs, err := timing.Segment(text, rate)
			if err != nil {
				return err
			}
			out, err := subtitles.Render(f, segs)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return os.WriteFile(output, []byte(out), 0o644)
		},
	}
	cmd.Flags().Float64("rate", timing.DefaultRate, "Speech rate multiplier")
	cmd.Flags().String("format", string(subtitles.FormatVTT), "Caption format: vtt, srt, ass or json")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate <script|->",
		Short: "Estimate how long a script takes to read aloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			clock, err := timing.EstimateDuration(text)
			if err != nil {
				return err
			}
			if !verbose {
				fmt.Fprintln(cmd.OutOrStdout(), clock)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d words, %d sentences)\n",
				clock, timing.CountWords(text), len(timing.Sentences(text)))
			return nil
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Also print word and sentence counts")
	return cmd
}

// readInput reads a script from a file, or from stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
