package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

const (
	DefaultFrameRate     = 60
	DefaultMaxFrameDelta = 100 * time.Millisecond
)

var ErrAlreadyRunning = errors.New("runner already running")

// Target is something the runner can drive one frame at a time. Step must be safe
// to call from the runner goroutine while other goroutines read the target.
type Target interface {
	Step(deltaMs float64) engine.TickResult
	Speed() float64
}

// Options configures a Runner
type Options struct {
	FrameRate     int
	MaxFrameDelta time.Duration

	// OnTick is called from the runner goroutine after every frame
	OnTick func(result engine.TickResult)
}

// Runner drives a Target at a fixed frame rate in its own goroutine
type Runner struct {
	target Target
	opts   Options

	mu      sync.Mutex
	running bool
	paused  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates a stopped runner for target
func NewRunner(target Target, opts Options) *Runner {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	if opts.MaxFrameDelta <= 0 {
		opts.MaxFrameDelta = DefaultMaxFrameDelta
	}

	done := make(chan struct{})
	close(done)

	return &Runner{
		target: target,
		opts:   opts,
		done:   done,
	}
}

// Start launches the frame goroutine. It stops on game over, Stop, or when ctx ends.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.done = make(chan struct{})

	go r.run(ctx, r.done)
	return nil
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(time.Second / time.Duration(r.opts.FrameRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now

			if r.IsPaused() {
				continue
			}

			result := r.target.Step(r.FrameDelta(elapsed, r.target.Speed()))
			if r.opts.OnTick != nil {
				r.opts.OnTick(result)
			}
			if result.GameOver {
				return
			}
		}
	}
}

// Stop cancels the frame goroutine and waits for the in-flight frame to finish
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-done
}

// Done is closed once the frame goroutine has exited
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Runner) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

func (r *Runner) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
}

func (r *Runner) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Step advances the target by one manual frame of deltaMs, scaled by its speed
func (r *Runner) Step(deltaMs float64) engine.TickResult {
	result := r.target.Step(deltaMs * r.target.Speed())
	if r.opts.OnTick != nil {
		r.opts.OnTick(result)
	}
	return result
}

// FrameDelta converts real elapsed time into simulation milliseconds: the elapsed
// time is clamped to MaxFrameDelta and then scaled by speed.
func (r *Runner) FrameDelta(elapsed time.Duration, speed float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > r.opts.MaxFrameDelta {
		elapsed = r.opts.MaxFrameDelta
	}
	if speed <= 0 {
		speed = 1
	}
	return float64(elapsed) / float64(time.Millisecond) * speed
}
