// Package wsengine drives the browser's speechSynthesis API over a WebSocket.
// The CLI serves a small bridge page; the page connects back, speaks the
// utterances it is sent and reports start, boundary, end and error events.
package wsengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

const writeTimeout = 5 * time.Second

var (
	ErrNotConnected = errors.New("speech bridge not connected")
	ErrClosed       = errors.New("speech bridge closed")
)

// command is the server to page message. A nil Utterance is omitted.
type command struct {
	Op string `json:"op"`
	*types.Utterance
}

type Engine struct {
	Logf func(format string, args ...any)

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu        sync.Mutex
	conn      *websocket.Conn
	connected chan struct{}
	closed    bool

	writeMu sync.Mutex
	events  chan types.SpeechEvent
	done    chan struct{}
	readers sync.WaitGroup
}

func New() *Engine {
	e := &Engine{
		connected: make(chan struct{}),
		events:    make(chan types.SpeechEvent, 64),
		done:      make(chan struct{}),
	}
	e.mux = http.NewServeMux()
	e.mux.HandleFunc("/", e.serveBridge)
	e.mux.HandleFunc("/ws", e.serveWS)
	return e
}

func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) { e.mux.ServeHTTP(w, r) }

func (e *Engine) serveBridge(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(bridgeHTML))
}

func (e *Engine) serveWS(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	busy, closed := e.conn != nil, e.closed
	e.mu.Unlock()
	if closed {
		http.Error(w, ErrClosed.Error(), http.StatusGone)
		return
	}
	if busy {
		http.Error(w, "a speech bridge is already connected", http.StatusConflict)
		return
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.logf("speech bridge upgrade failed: %v", err)
		return
	}

	e.mu.Lock()
	if e.conn != nil || e.closed {
		e.mu.Unlock()
		_ = conn.Close()
		return
	}
	e.conn = conn
	close(e.connected)
	e.readers.Add(1)
	e.mu.Unlock()

	e.logf("speech bridge connected from %s", r.RemoteAddr)
	go e.readLoop(conn)
}

func (e *Engine) readLoop(conn *websocket.Conn) {
	defer e.readers.Done()
	for {
		var ev types.SpeechEvent
		if err := conn.ReadJSON(&ev); err != nil {
			e.mu.Lock()
			closed := e.closed
			if e.conn == conn {
				e.conn = nil
				e.connected = make(chan struct{})
			}
			e.mu.Unlock()
			_ = conn.Close()
			if closed {
				return
			}
			e.logf("speech bridge disconnected: %v", err)
			e.emit(types.SpeechEvent{Kind: types.SpeechError, Err: "speech bridge disconnected"})
			return
		}
		if ev.Kind == "" {
			continue
		}
		if !e.emit(ev) {
			return
		}
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

// WaitConnected blocks until a bridge page has connected.
func (e *Engine) WaitConnected(ctx context.Context) error {
	e.mu.Lock()
	ch, closed := e.connected, e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	select {
	case <-ch:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Speak(ctx context.Context, u types.Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.send(command{Op: "speak", Utterance: &u})
}

func (e *Engine) Cancel() error {
	err := e.send(command{Op: "cancel"})
	if errors.Is(err, ErrNotConnected) {
		return nil
	}
	return err
}

func (e *Engine) send(cmd command) error {
	e.mu.Lock()
	conn, closed := e.conn, e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if conn == nil {
		return ErrNotConnected
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Op, err)
	}
	return nil
}

// Events is closed by Close.
func (e *Engine) Events() <-chan types.SpeechEvent { return e.events }

func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	conn := e.conn
	e.conn = nil
	close(e.done)
	e.mu.Unlock()

	var err error
	if conn != nil {
		e.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		e.writeMu.Unlock()
		err = conn.Close()
	}
	e.readers.Wait()
	close(e.events)
	return err
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}
