package console

import (
	"io"
	"os"
	"sync"
	"time"
)

const defaultRedrawInterval = time.Second

// Tracker owns the progress display for a run. Row registration order is
// stable, so the display order always matches job launch order.
type Tracker struct {
	mu          sync.Mutex
	render      renderer
	interactive bool
	interval    time.Duration
	clock       func() time.Time
	order       []string
	rows        map[string]*row
	closed      bool
}

type row struct {
	text     string
	lastDraw time.Time
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithInterval overrides the per-row redraw throttle window.
func WithInterval(interval time.Duration) Option {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

// WithInteractive forces interactive or plain rendering regardless of the
// detected terminal. Primarily for tests.
func WithInteractive(interactive bool) Option {
	return func(t *Tracker) {
		t.interactive = interactive
	}
}

// WithClock overrides the time source used by the redraw throttle.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// New builds a tracker writing to out. A nil writer defaults to stdout.
func New(out io.Writer, opts ...Option) *Tracker {
	if out == nil {
		out = os.Stdout
	}
	tracker := &Tracker{
		interactive: isInteractive(out),
		interval:    defaultRedrawInterval,
		clock:       time.Now,
		rows:        make(map[string]*row),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	if tracker.interactive {
		tracker.render = newANSIRenderer(out)
	} else {
		tracker.render = &plainRenderer{out: out}
	}
	return tracker
}

// Register adds a progress row for id and emits it immediately. Duplicate
// registrations are ignored.
func (t *Tracker) Register(id, line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if _, exists := t.rows[id]; exists {
		return
	}
	t.order = append(t.order, id)
	t.rows[id] = &row{text: line, lastDraw: t.clock()}
	t.render.register(line, t.snapshot())
}

// Update stores the new text for id's row. Interactive terminals repaint the
// block at most once per throttle window per row; non-interactive outputs
// suppress updates entirely.
func (t *Tracker) Update(id, line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	entry, ok := t.rows[id]
	if !ok {
		return
	}
	entry.text = line
	if !t.interactive {
		return
	}
	now := t.clock()
	if now.Sub(entry.lastDraw) < t.interval {
		return
	}
	entry.lastDraw = now
	t.render.update(t.snapshot())
}

// Message emits an out-of-band line immediately. It is never throttled and
// stays visually separate from the progress block.
func (t *Tracker) Message(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.render.message(line, t.snapshot())
}

// Close restores the terminal state. Later calls are no-ops.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.render.close()
}

func (t *Tracker) snapshot() []string {
	lines := make([]string, 0, len(t.order))
	for _, id := range t.order {
		lines = append(lines, t.rows[id].text)
	}
	return lines
}
