// Package engine turns a free-text navigation instruction into a
// streamed grid plan: it POSTs the request to the generation backend,
// consumes the event-stream response, and maintains the run state the
// caller observes (status, plan, notes, trail, stats).
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/protocol/eventstream"
	"github.com/gridpilot/gridpilot/internal/shared/logging"
)

// Status is the lifecycle state of the current run.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusBlocked Status = "blocked"
	StatusError   Status = "error"
)

// ErrEmptyInstruction is returned when the trimmed instruction is empty;
// no network call is made in that case.
var ErrEmptyInstruction = errors.New("engine: instruction is empty")

// Action is one sanitized directional move of the plan. Steps is always
// within [1, 20].
type Action struct {
	Dir   grid.Direction `json:"dir"`
	Steps int            `json:"steps"`
}

// Snapshot is a point-in-time copy of the externally observable run
// state. Slices are copies; callers may retain them.
type Snapshot struct {
	Status  Status
	Message string
	Plan    []Action
	Notes   string
	Trail   []grid.Coord
	Stats   *Stats
}

// Params configures an Engine.
type Params struct {
	// BaseURL of the generation backend, e.g. http://127.0.0.1:8787.
	BaseURL string
	// APIKey is sent as X-Gridpilot-API-Key when non-empty.
	APIKey string
	// HTTPClient overrides the default client. The default carries no
	// timeout: the stream is long-lived and cancellation is explicit.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Engine executes at most one run at a time. Starting a new run
// supersedes any run still in flight. Instances are independent; no
// global state is shared.
type Engine struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger

	mu      sync.Mutex
	seq     uint64
	current *run
	closed  bool
	subs    []chan<- Snapshot
}

// run is the mutable state of one execution. A new Execute call creates
// a fresh run; the old one is never mutated again.
type run struct {
	id        uint64
	cancel    context.CancelFunc
	aborted   bool
	status    Status
	message   string
	plan      []Action
	notes     string
	trail     []grid.Coord
	visited   map[string]struct{}
	stats     *Stats
	startedAt time.Time
}

// New constructs an Engine.
func New(p Params) (*Engine, error) {
	base := strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("engine: base url required")
	}
	e := &Engine{
		baseURL: base,
		apiKey:  p.APIKey,
		httpc:   p.HTTPClient,
		logger:  p.Logger,
	}
	if e.httpc == nil {
		e.httpc = &http.Client{}
	}
	if e.logger == nil {
		e.logger = logging.New("engine")
	}
	return e, nil
}

// Execute runs one instruction to completion and returns the final
// snapshot. It blocks until a terminal event arrives, the stream ends,
// or the run is cancelled. A cancelled run (Abort, supersession, Close,
// or caller context) returns a nil error. Any run still in flight is
// superseded before this one starts.
func (e *Engine) Execute(ctx context.Context, req Request) (Snapshot, error) {
	body, err := buildBody(req)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed {
			return Snapshot{}, fmt.Errorf("engine: closed")
		}
		e.supersedeLocked()
		e.current = &run{
			status:  StatusIdle,
			message: "Enter an instruction before launching a run.",
		}
		e.notifyLocked()
		return e.snapshotLocked(), err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return Snapshot{}, fmt.Errorf("engine: closed")
	}
	e.supersedeLocked()
	start := grid.Origin
	if req.Start != nil {
		start = *req.Start
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.seq++
	r := &run{
		id:        e.seq,
		cancel:    cancel,
		status:    StatusRunning,
		trail:     []grid.Coord{start},
		visited:   map[string]struct{}{start.Key(): {}},
		startedAt: time.Now(),
	}
	e.current = r
	e.notifyLocked()
	e.mu.Unlock()

	streamErr := e.stream(runCtx, r, body)
	return e.finish(runCtx, r, streamErr)
}

// Abort cancels the run currently in flight: status goes back to idle,
// the message is cleared, and the plan, trail, and stats accumulated so
// far stay visible. A run that already finished is left untouched; only
// a new Execute moves it out of its final state.
func (e *Engine) Abort() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current == nil || e.current.status != StatusRunning {
		return
	}
	r := e.current
	if r.cancel != nil {
		r.cancel()
	}
	r.aborted = true
	r.status = StatusIdle
	r.message = ""
	e.notifyLocked()
}

// Close tears the engine down: the in-flight run is cancelled and no
// further state mutation can occur, even from frames still being
// processed.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	if e.current != nil && e.current.cancel != nil {
		e.current.cancel()
	}
}

// Snapshot returns the current observable state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers a channel that receives a snapshot after every
// state change. Sends never block; a full channel drops the update.
func (e *Engine) Subscribe(ch chan<- Snapshot) (func(), error) {
	if ch == nil {
		return nil, errors.New("engine: channel must not be nil")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, ch)
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i := range e.subs {
			if e.subs[i] == ch {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
	}, nil
}

func (e *Engine) supersedeLocked() {
	if e.current != nil && e.current.cancel != nil {
		e.current.cancel()
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	if e.current == nil {
		return Snapshot{Status: StatusIdle}
	}
	r := e.current
	snap := Snapshot{
		Status:  r.status,
		Message: r.message,
		Notes:   r.notes,
		Plan:    append([]Action(nil), r.plan...),
		Trail:   append([]grid.Coord(nil), r.trail...),
	}
	if r.stats != nil {
		stats := *r.stats
		snap.Stats = &stats
	}
	return snap
}

func (e *Engine) notifyLocked() {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// fail records a terminal transport-level failure on r, unless the run
// was already superseded, aborted, or torn down.
func (e *Engine) fail(r *run, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current != r || r.aborted {
		return
	}
	r.status = StatusError
	r.message = message
	e.notifyLocked()
}

// stream issues the POST and feeds every frame to the dispatcher until
// the stats frame, stream end, or cancellation.
func (e *Engine) stream(ctx context.Context, r *run, body planRequestBody) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("engine: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/plan", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("engine: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if e.apiKey != "" {
		httpReq.Header.Set("X-Gridpilot-API-Key", e.apiKey)
	}

	resp, err := e.httpc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("engine: reach planner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorBody(resp.Body)
		if msg == "" {
			msg = fmt.Sprintf("planner returned http %d", resp.StatusCode)
		}
		return errors.New(msg)
	}

	reader := eventstream.NewReader(resp.Body)
	for {
		if ctx.Err() != nil {
			return nil
		}
		frame, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("engine: read stream: %w", err)
		}
		if stop := e.dispatch(r, frame); stop {
			return nil
		}
	}
}

// finish translates the end of the stream loop into the caller-facing
// outcome, applying the cancellation rules: an aborted or superseded run
// is never an error.
func (e *Engine) finish(ctx context.Context, r *run, streamErr error) (Snapshot, error) {
	e.mu.Lock()
	superseded := e.closed || e.current != r
	aborted := r.aborted
	e.mu.Unlock()

	if superseded {
		return Snapshot{}, nil
	}
	if aborted {
		return e.Snapshot(), nil
	}
	if ctx.Err() != nil {
		// Caller-context cancellation behaves like an abort: silent,
		// back to idle, accumulated progress kept.
		e.mu.Lock()
		if !e.closed && e.current == r {
			r.status = StatusIdle
			r.message = ""
			e.notifyLocked()
		}
		e.mu.Unlock()
		return e.Snapshot(), nil
	}
	if streamErr != nil {
		e.fail(r, humanMessage(streamErr))
		e.logger.Error("run failed", "error", streamErr)
		return e.Snapshot(), streamErr
	}

	e.mu.Lock()
	if r.status == StatusRunning {
		r.status = StatusError
		r.message = msgStreamTruncated
		e.notifyLocked()
		e.mu.Unlock()
		return e.Snapshot(), errors.New(msgStreamTruncated)
	}
	status, message := r.status, r.message
	e.mu.Unlock()

	if status == StatusError {
		return e.Snapshot(), errors.New(message)
	}
	return e.Snapshot(), nil
}

func readErrorBody(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 8*1024))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// humanMessage strips the engine error-wrapping prefix for display.
func humanMessage(err error) string {
	msg := err.Error()
	return strings.TrimPrefix(msg, "engine: ")
}
