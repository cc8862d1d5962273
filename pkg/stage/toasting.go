package stage

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAlreadyToasting is returned by Start while the timer is running.
	ErrAlreadyToasting = errors.New("toaster already running")
	// ErrNotToasting is returned by Stop when the timer was never started.
	ErrNotToasting = errors.New("toaster not running")
	// ErrToastFinished is returned once the toast has been delivered.
	ErrToastFinished = errors.New("toast already finished")
	// ErrToasterClosed is returned after Close or parent cancellation.
	ErrToasterClosed = errors.New("toaster closed")
)

// Toaster raises the toast level by one each tick while it runs. It stops
// on its own at MaxToastLevel, or when the player calls Stop. Either way
// the level is delivered exactly once on Done. At most one ticker goroutine
// exists at a time and it exits on every path out: Stop, the automatic
// stop, Close, and cancellation of the context passed to Start.
//
// A Toaster is safe for concurrent use.
type Toaster struct {
	tick   time.Duration
	done   chan Result
	closed chan struct{}

	mu       sync.Mutex
	level    int
	active   bool
	finished bool
	shut     bool
	cancel   context.CancelFunc
	exited   chan struct{}
}

// NewToaster returns an idle toaster advancing once per tick.
func NewToaster(tick time.Duration) *Toaster {
	if tick <= 0 {
		tick = DefaultToastTick
	}
	return &Toaster{tick: tick, done: make(chan Result, 1), closed: make(chan struct{})}
}

// Start begins toasting. The timer is released when ctx is cancelled.
func (t *Toaster) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.shut:
		return ErrToasterClosed
	case t.finished:
		return ErrToastFinished
	case t.active:
		return ErrAlreadyToasting
	}

	ctx, cancel := context.WithCancel(ctx)
	t.active = true
	t.cancel = cancel
	t.exited = make(chan struct{})
	go t.run(ctx, t.exited)
	return nil
}

func (t *Toaster) run(ctx context.Context, exited chan struct{}) {
	defer close(exited)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.abandon()
			return
		case <-ticker.C:
			if !t.advance() {
				return
			}
		}
	}
}

// advance moves the level up one step. It returns false once the ticker
// should exit.
func (t *Toaster) advance() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return false
	}
	t.level++
	if t.level >= MaxToastLevel {
		t.level = MaxToastLevel
		t.completeLocked()
		return false
	}
	return true
}

// abandon handles cancellation of the parent context. Nothing is delivered.
func (t *Toaster) abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		t.active = false
		t.shutLocked()
	}
}

func (t *Toaster) shutLocked() {
	if !t.shut {
		t.shut = true
		close(t.closed)
	}
}

func (t *Toaster) completeLocked() {
	t.active = false
	t.finished = true
	t.cancel()
	t.done <- Result{Kind: KindToast, Value: t.level}
}

// Stop ends toasting at the current level and returns the stage result.
// It blocks until the ticker goroutine has exited.
func (t *Toaster) Stop() (Result, error) {
	t.mu.Lock()
	switch {
	case t.finished:
		t.mu.Unlock()
		return Result{}, ErrToastFinished
	case t.shut:
		t.mu.Unlock()
		return Result{}, ErrToasterClosed
	case !t.active:
		t.mu.Unlock()
		return Result{}, ErrNotToasting
	}
	res := Result{Kind: KindToast, Value: t.level}
	t.completeLocked()
	exited := t.exited
	t.mu.Unlock()

	<-exited
	return res, nil
}

// Close tears the toaster down without delivering a result. It is safe to
// call more than once and after the toast has finished.
func (t *Toaster) Close() {
	t.mu.Lock()
	exited := t.exited
	if t.active {
		t.active = false
		t.cancel()
	}
	if !t.finished {
		t.shutLocked()
	}
	t.mu.Unlock()

	if exited != nil {
		<-exited
	}
}

// Done delivers the finished toast exactly once.
func (t *Toaster) Done() <-chan Result { return t.done }

// Closed is closed when the toaster is torn down without a result, by
// Close or by cancellation of the context passed to Start. Waiters on Done
// should select on it too.
func (t *Toaster) Closed() <-chan struct{} { return t.closed }

// Level returns the current toast level.
func (t *Toaster) Level() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// Active reports whether the timer is running.
func (t *Toaster) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Finished reports whether the toast has been delivered.
func (t *Toaster) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}
