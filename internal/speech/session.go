// Package speech plays a narration script through a SpeechEngine and keeps
// the on-screen caption in step with the estimated subtitle timeline.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/UDaygupta12512/blogcast/internal/domain/timing"
	"github.com/UDaygupta12512/blogcast/internal/ports"
	"github.com/UDaygupta12512/blogcast/internal/types"
)

var (
	ErrStartTimeout = errors.New("speech engine did not start")
	ErrBusy         = errors.New("speech session is busy")
	ErrDisposed     = errors.New("speech session is disposed")
	ErrStopped      = errors.New("speech stopped")
)

type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
	StateStopped  State = "stopped"
	StateFailed   State = "failed"
	StateDisposed State = "disposed"
)

const defaultCueInterval = 100 * time.Millisecond

type Options struct {
	Voice  string
	Rate   float64
	Pitch  float64
	Volume float64

	// Zero values select timing.DefaultModel and DefaultRetryPolicy.
	Model timing.Model
	Retry RetryPolicy

	CueInterval time.Duration
	// OnCue is called from the playback goroutine whenever the active caption
	// changes. index is -1 between captions.
	OnCue func(index int, seg types.SubtitleSegment)
	Logf  func(format string, args ...any)
}

type Session struct {
	engine ports.SpeechEngine
	opts   Options

	mu     sync.Mutex
	state  State
	segs   []types.SubtitleSegment
	done   chan struct{}
	err    error
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(engine ports.SpeechEngine, opts Options) (*Session, error) {
	if engine == nil {
		return nil, errors.New("speech engine is required")
	}
	if err := timing.CheckRate(opts.Rate); err != nil {
		return nil, err
	}
	if opts.Model == (timing.Model{}) {
		opts.Model = timing.DefaultModel()
	}
	if err := opts.Model.Validate(); err != nil {
		return nil, err
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if err := opts.Retry.Validate(); err != nil {
		return nil, err
	}
	if opts.CueInterval <= 0 {
		opts.CueInterval = defaultCueInterval
	}
	return &Session{engine: engine, opts: opts, state: StateIdle}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Segments returns the caption timeline of the current or last run.
func (s *Session) Segments() []types.SubtitleSegment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.SubtitleSegment(nil), s.segs...)
}

// Start speaks script and returns once the engine reports that speech began.
// Playback then continues in the background until it ends, fails or Stop is
// called. ctx bounds only the start handshake.
func (s *Session) Start(ctx context.Context, script string) error {
	segs, err := s.opts.Model.Segment(script, s.opts.Rate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	switch s.state {
	case StateDisposed:
		s.mu.Unlock()
		return ErrDisposed
	case StateStarting, StatePlaying:
		s.mu.Unlock()
		return ErrBusy
	}
	s.segs = segs
	s.err = nil
	s.done = make(chan struct{})
	if len(segs) == 0 {
		s.state = StateFinished
		close(s.done)
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.state = StateStarting
	s.mu.Unlock()

	id, startedAt, err := s.handshake(ctx, runCtx, script)
	if err != nil {
		cancel()
		if errors.Is(err, ErrStopped) {
			s.finish(StateStopped, nil)
		} else {
			s.finish(StateFailed, err)
		}
		return err
	}

	s.mu.Lock()
	if s.state != StateStarting {
		s.mu.Unlock()
		cancel()
		_ = s.engine.Cancel()
		return ErrDisposed
	}
	s.state = StatePlaying
	s.wg.Add(1)
	s.mu.Unlock()
	go s.play(runCtx, id, startedAt, segs)
	return nil
}

func (s *Session) handshake(ctx, runCtx context.Context, script string) (string, time.Time, error) {
	events := s.engine.Events()
	for attempt := 1; attempt <= s.opts.Retry.MaxAttempts; attempt++ {
		u := types.Utterance{
			ID:     uuid.NewString(),
			Text:   script,
			Voice:  s.opts.Voice,
			Rate:   s.opts.Rate,
			Pitch:  s.opts.Pitch,
			Volume: s.opts.Volume,
		}
		if err := s.engine.Speak(ctx, u); err != nil {
			return "", time.Time{}, fmt.Errorf("speak: %w", err)
		}

		timer := time.NewTimer(s.opts.Retry.Delay)
	wait:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					timer.Stop()
					return "", time.Time{}, errors.New("speech engine closed")
				}
				if ev.UtteranceID != u.ID {
					continue
				}
				switch ev.Kind {
				case types.SpeechStart:
					timer.Stop()
					return u.ID, time.Now(), nil
				case types.SpeechError:
					timer.Stop()
					return "", time.Time{}, fmt.Errorf("speech engine: %s", ev.Err)
				}
			case <-timer.C:
				s.logf("speech start timed out (attempt %d/%d)", attempt, s.opts.Retry.MaxAttempts)
				_ = s.engine.Cancel()
				break wait
			case <-runCtx.Done():
				timer.Stop()
				_ = s.engine.Cancel()
				return "", time.Time{}, ErrStopped
			case <-ctx.Done():
				timer.Stop()
				_ = s.engine.Cancel()
				return "", time.Time{}, ctx.Err()
			}
		}
	}
	return "", time.Time{}, ErrStartTimeout
}

func (s *Session) play(ctx context.Context, id string, startedAt time.Time, segs []types.SubtitleSegment) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.CueInterval)
	defer ticker.Stop()

	cur := -1
	tick := func() {
		idx := timing.ActiveIndex(segs, time.Since(startedAt))
		if idx == cur {
			return
		}
		cur = idx
		if s.opts.OnCue == nil {
			return
		}
		var seg types.SubtitleSegment
		if idx >= 0 {
			seg = segs[idx]
		}
		s.opts.OnCue(idx, seg)
	}
	tick()

	events := s.engine.Events()
	for {
		select {
		case <-ctx.Done():
			_ = s.engine.Cancel()
			s.finish(StateStopped, nil)
			return
		case ev, ok := <-events:
			if !ok {
				s.finish(StateFailed, errors.New("speech engine closed"))
				return
			}
			if ev.UtteranceID != id && ev.UtteranceID != "" {
				continue
			}
			switch ev.Kind {
			case types.SpeechEnd:
				s.finish(StateFinished, nil)
				return
			case types.SpeechError:
				s.finish(StateFailed, fmt.Errorf("speech engine: %s", ev.Err))
				return
			}
		case <-ticker.C:
			tick()
		}
	}
}

func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStarting && s.state != StatePlaying {
		return
	}
	s.state = state
	s.err = err
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	close(s.done)
}

// Wait blocks until the current run ends and returns its error. It returns
// nil immediately when nothing was started.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels speech in progress and waits for the run to settle.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	active := s.state == StateStarting || s.state == StatePlaying
	s.mu.Unlock()
	if !active || cancel == nil {
		return
	}
	cancel()
	<-done
}

// Dispose stops any speech and rejects later starts. A Start still in its
// handshake fails, and Wait returns nil. The engine stays open; its owner
// closes it.
func (s *Session) Dispose() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	active := s.state == StateStarting || s.state == StatePlaying
	s.state = StateDisposed
	s.cancel = nil
	if active && done != nil {
		s.err = nil
		close(done)
	}
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if active {
		_ = s.engine.Cancel()
	}
	s.wg.Wait()
}

func (s *Session) logf(format string, args ...any) {
	if s.opts.Logf != nil {
		s.opts.Logf(format, args...)
	}
}
