// Package countup drives a number from zero to a target over a fixed
// duration with an ease-out-quart curve.
package countup

import (
	"math"
	"sync"
	"time"
)

// Defaults match the achievements section of the site.
const (
	DefaultDuration = 2000 * time.Millisecond
	DefaultInterval = 16 * time.Millisecond
	FormatDelay     = 500 * time.Millisecond
)

// EaseOutQuart maps progress p in [0, 1] to 1 - (1-p)^4.
func EaseOutQuart(p float64) float64 {
	return 1 - math.Pow(1-p, 4)
}

// Frame returns the displayed value elapsed after the trigger, and whether
// the animation has finished. Nothing moves until delay has passed; once
// progress reaches 1 the value is exactly target.
func Frame(target int64, elapsed, delay, duration time.Duration) (int64, bool) {
	if elapsed < delay {
		return 0, false
	}
	if duration <= 0 {
		return target, true
	}

	progress := float64(elapsed-delay) / float64(duration)
	if progress >= 1 {
		return target, true
	}
	progress = max(progress, 0)
	return int64(math.Floor(float64(target) * EaseOutQuart(progress))), false
}

// State is a snapshot of an animator.
type State struct {
	Target    int64
	Value     int64
	Done      bool
	Formatted bool
}

// Option configures an Animator.
type Option func(*Animator)

// WithDuration sets the animation duration.
func WithDuration(d time.Duration) Option {
	return func(a *Animator) {
		a.duration = d
	}
}

// WithDelay sets how long to wait after a trigger before counting.
func WithDelay(d time.Duration) Option {
	return func(a *Animator) {
		a.delay = d
	}
}

// WithInterval sets the sampling interval.
func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		a.interval = d
	}
}

// WithMillionViews flips State.Formatted FormatDelay after completion.
func WithMillionViews(enabled bool) Option {
	return func(a *Animator) {
		a.millionViews = enabled
	}
}

// OnUpdate registers a callback invoked with every new state.
func OnUpdate(fn func(State)) Option {
	return func(a *Animator) {
		a.onUpdate = fn
	}
}

// Animator owns at most one running timer. Triggering again cancels the
// previous cycle before starting from zero.
type Animator struct {
	duration     time.Duration
	delay        time.Duration
	interval     time.Duration
	millionViews bool
	onUpdate     func(State)

	mu    sync.Mutex
	state State
	gen   uint64
	stop  chan struct{}
	done  chan struct{}
	fmtT  *time.Timer
}

// New creates an idle animator displaying zero.
func New(opts ...Option) *Animator {
	a := &Animator{
		duration: DefaultDuration,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.interval <= 0 {
		a.interval = DefaultInterval
	}
	return a
}

// State returns the current snapshot.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Trigger starts a new cycle toward target, cancelling any cycle in flight.
func (a *Animator) Trigger(target int64) {
	a.mu.Lock()
	a.cancelLocked()
	gen := a.gen
	a.state = State{Target: target}
	stop := make(chan struct{})
	done := make(chan struct{})
	a.stop, a.done = stop, done
	a.mu.Unlock()

	a.emit(State{Target: target})
	go a.run(gen, target, stop, done)
}

// Reset cancels any cycle and returns the display to zero.
func (a *Animator) Reset() {
	a.mu.Lock()
	a.cancelLocked()
	a.state = State{}
	a.mu.Unlock()
}

// Stop cancels any cycle and waits for its goroutine to exit. The last
// state is kept.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.cancelLocked()
	a.mu.Unlock()
}

// cancelLocked must be called with a.mu held. It retires the current
// generation, then releases the lock while waiting for the running
// goroutine to exit.
func (a *Animator) cancelLocked() {
	a.gen++
	if a.fmtT != nil {
		a.fmtT.Stop()
		a.fmtT = nil
	}
	for a.stop != nil {
		stop, done := a.stop, a.done
		a.stop, a.done = nil, nil
		close(stop)

		a.mu.Unlock()
		<-done
		a.mu.Lock()
	}
}

func (a *Animator) run(gen uint64, target int64, stop, done chan struct{}) {
	defer close(done)

	start := time.Now()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			value, finished := Frame(target, now.Sub(start), a.delay, a.duration)
			if !a.update(gen, value, finished) || finished {
				return
			}
		}
	}
}

// update applies a frame if gen is still current.
func (a *Animator) update(gen uint64, value int64, finished bool) bool {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return false
	}
	a.state.Value = value
	a.state.Done = finished
	if finished && a.millionViews {
		a.fmtT = time.AfterFunc(FormatDelay, func() { a.format(gen) })
	}
	snapshot := a.state
	a.mu.Unlock()

	a.emit(snapshot)
	return true
}

func (a *Animator) format(gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.state.Formatted = true
	a.fmtT = nil
	snapshot := a.state
	a.mu.Unlock()

	a.emit(snapshot)
}

func (a *Animator) emit(s State) {
	if a.onUpdate != nil {
		a.onUpdate(s)
	}
}
