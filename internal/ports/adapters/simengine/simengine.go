// Package simengine is a speech engine that speaks nothing. It reports start
// and end events on the clock the timing model predicts, which lets the CLI
// preview captions without a browser.
package simengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/types"
)

var ErrClosed = errors.New("simulated engine closed")

type Engine struct {
	model   timing.Model
	speedup float64

	mu      sync.Mutex
	closed  bool
	current chan struct{}
	events  chan types.SpeechEvent
	done    chan struct{}
	wg      sync.WaitGroup
}

// New returns an engine that plays utterances speedup times faster than the
// model's estimate. A speedup <= 0 means real time.
func New(model timing.Model, speedup float64) *Engine {
	if speedup <= 0 {
		speedup = 1
	}
	return &Engine{
		model:   model,
		speedup: speedup,
		events:  make(chan types.SpeechEvent, 16),
		done:    make(chan struct{}),
	}
}

func (e *Engine) Speak(ctx context.Context, u types.Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rate := u.Rate
	if rate == 0 {
		rate = timing.DefaultRate
	}
	segs, err := e.model.Segment(u.Text, rate)
	if err != nil {
		return err
	}
	var total time.Duration
	if len(segs) > 0 {
		total = segs[len(segs)-1].End
	}
	total = time.Duration(float64(total) / e.speedup)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.current != nil {
		close(e.current)
	}
	stop := make(chan struct{})
	e.current = stop
	e.wg.Add(1)
	e.mu.Unlock()

	go e.play(u.ID, total, stop)
	return nil
}

func (e *Engine) play(id string, total time.Duration, stop chan struct{}) {
	defer e.wg.Done()
	if !e.emit(types.SpeechEvent{Kind: types.SpeechStart, UtteranceID: id}) {
		return
	}
	t := time.NewTimer(total)
	defer t.Stop()
	select {
	case <-t.C:
		e.emit(types.SpeechEvent{Kind: types.SpeechEnd, UtteranceID: id})
	case <-stop:
	case <-e.done:
	}
}

func (e *Engine) emit(ev types.SpeechEvent) bool {
	select {
	case e.events <- ev:
		return true
	case <-e.done:
		return false
	}
}

func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		close(e.current)
		e.current = nil
	}
	return nil
}

func (e *Engine) Events() <-chan types.SpeechEvent { return e.events }

func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.done)
	e.mu.Unlock()

	e.wg.Wait()
	close(e.events)
	return nil
}
