package timing

import (
	"fmt"
	"math"
	"time"
)

// Estimator predicts total playback length of a script. It is separate from
// Model: it adds punctuation pauses and ignores the speech rate.
type Estimator struct {
	WordsPerSecond float64
	SentencePause  time.Duration
	QuestionPause  time.Duration
}

func DefaultEstimator() Estimator {
	return Estimator{
		WordsPerSecond: 2.2,
		SentencePause:  800 * time.Millisecond,
		QuestionPause:  500 * time.Millisecond,
	}
}

func (e Estimator) Validate() error {
	if !(e.WordsPerSecond > 0) || math.IsInf(e.WordsPerSecond, 0) {
		return fmt.Errorf("%w: words per second must be a positive number", ErrInvalidArgument)
	}
	if e.SentencePause < 0 || e.QuestionPause < 0 {
		return fmt.Errorf("%w: pauses must be >= 0", ErrInvalidArgument)
	}
	return nil
}

// ceilSlack absorbs float error so exact results such as 11/2.2 stay whole.
const ceilSlack = 1e-9

// Estimate returns the estimated playback length rounded up to whole seconds.
func (e Estimator) Estimate(script string) (time.Duration, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if err := checkText(script); err != nil {
		return 0, err
	}
	words := CountWords(script)
	sentencePauses := len(sentencePauseRE.FindAllStringIndex(script, -1))
	questionPauses := len(questionPauseRE.FindAllStringIndex(script, -1))

	total := float64(words)/e.WordsPerSecond +
		float64(sentencePauses)*e.SentencePause.Seconds() +
		float64(questionPauses)*e.QuestionPause.Seconds()
	secs := math.Ceil(total - ceilSlack)
	if secs < 0 {
		secs = 0
	}
	return time.Duration(secs) * time.Second, nil
}

// EstimateDuration formats the DefaultEstimator result as M:SS.
func EstimateDuration(script string) (string, error) {
	d, err := DefaultEstimator().Estimate(script)
	if err != nil {
		return "", err
	}
	return FormatClock(d), nil
}

// FormatClock renders whole seconds as minutes:seconds, e.g. 0:03 or 61:05.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
