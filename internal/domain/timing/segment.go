// Package timing estimates when narration text will be spoken.
//
// All timings produced here are heuristic estimates derived from word counts
// and punctuation. Nothing is measured from audio, so captions can drift from
// what a speech engine actually renders.
package timing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNonPositiveRate = errors.New("speech rate must be > 0")
)

const DefaultRate = 1.0

// Model sizes caption windows. Durations scale with the speech rate; the
// gap between windows does not.
type Model struct {
	MinSegment     time.Duration
	WordsPerSecond float64
	Gap            time.Duration
}

func DefaultModel() Model {
	return Model{
		MinSegment:     2500 * time.Millisecond,
		WordsPerSecond: 2.2,
		Gap:            800 * time.Millisecond,
	}
}

func (m Model) Validate() error {
	if m.MinSegment <= 0 {
		return fmt.Errorf("%w: min segment must be > 0", ErrInvalidArgument)
	}
	if m.Gap < 0 {
		return fmt.Errorf("%w: gap must be >= 0", ErrInvalidArgument)
	}
	if !(m.WordsPerSecond > 0) || math.IsInf(m.WordsPerSecond, 0) {
		return fmt.Errorf("%w: words per second must be a positive number", ErrInvalidArgument)
	}
	return nil
}

// CheckRate reports whether rate is usable as a speech rate multiplier.
func CheckRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: rate %v", ErrInvalidArgument, rate)
	}
	if rate <= 0 {
		return fmt.Errorf("%w: got %v", ErrNonPositiveRate, rate)
	}
	return nil
}

// Segment splits text into sentence captions using DefaultModel.
func Segment(text string, rate float64) ([]types.SubtitleSegment, error) {
	return DefaultModel().Segment(text, rate)
}

// Segment returns one caption per sentence. The first starts at zero and each
// following one starts Gap after the previous end.
func (m Model) Segment(text string, rate float64) ([]types.SubtitleSegment, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := CheckRate(rate); err != nil {
		return nil, err
	}
	if err := checkText(text); err != nil {
		return nil, err
	}

	sentences := Sentences(text)
	out := make([]types.SubtitleSegment, 0, len(sentences))
	var start time.Duration
	for i, s := range sentences {
		if i > 0 {
			start = out[i-1].End + m.Gap
		}
		d, err := m.duration(CountWords(s), rate)
		if err != nil {
			return nil, err
		}
		out = append(out, types.SubtitleSegment{
			Start: start,
			End:   start + d,
			Text:  s + ".",
		})
	}
	return out, nil
}

// maxSegmentSeconds keeps the conversion to time.Duration from overflowing.
const maxSegmentSeconds = 24 * 60 * 60

func (m Model) duration(words int, rate float64) (time.Duration, error) {
	sec := float64(words) / (rate * m.WordsPerSecond)
	if sec > maxSegmentSeconds {
		return 0, fmt.Errorf("%w: rate %v yields a %.0fs segment", ErrInvalidArgument, rate, sec)
	}
	d := time.Duration(sec * float64(time.Second))
	if d < m.MinSegment {
		return m.MinSegment, nil
	}
	return d, nil
}

// ActiveIndex returns the index of the segment on screen at elapsed, or -1
// when elapsed falls in a gap, before zero or after the last segment.
func ActiveIndex(segs []types.SubtitleSegment, elapsed time.Duration) int {
	if elapsed < 0 {
		return -1
	}
	i := sort.Search(len(segs), func(i int) bool { return segs[i].End > elapsed })
	if i < len(segs) && segs[i].Start <= elapsed {
		return i
	}
	return -1
}
