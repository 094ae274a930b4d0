package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

type fakeTarget struct {
	mu       sync.Mutex
	speed    float64
	deltas   []float64
	overAt   int
	stepping chan struct{}
}

func (f *fakeTarget) Step(deltaMs float64) engine.TickResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deltas = append(f.deltas, deltaMs)
	if f.stepping != nil {
		select {
		case f.stepping <- struct{}{}:
		default:
		}
	}
	return engine.TickResult{DeltaMs: deltaMs, GameOver: f.overAt > 0 && len(f.deltas) >= f.overAt}
}

func (f *fakeTarget) Speed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speed
}

func (f *fakeTarget) steps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deltas)
}

func TestFrameDelta(t *testing.T) {
	runner := NewRunner(&fakeTarget{speed: 1}, Options{})

	tests := []struct {
		name     string
		elapsed  time.Duration
		speed    float64
		expected float64
	}{
		{"normal frame", 16 * time.Millisecond, 1, 16},
		{"double speed", 16 * time.Millisecond, 2, 32},
		{"clamped before scaling", 500 * time.Millisecond, 4, 400},
		{"zero speed treated as 1", 10 * time.Millisecond, 0, 10},
		{"negative elapsed", -5 * time.Millisecond, 1, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := runner.FrameDelta(test.elapsed, test.speed); got != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, got)
			}
		})
	}
}

func TestRunner_StopsOnGameOver(t *testing.T) {
	target := &fakeTarget{speed: 1, overAt: 3}
	var ticks int
	var mu sync.Mutex
	runner := NewRunner(target, Options{FrameRate: 200, OnTick: func(engine.TickResult) {
		mu.Lock()
		ticks++
		mu.Unlock()
	}})

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start runner: %v", err)
	}

	select {
	case <-runner.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the runner to stop after game over")
	}

	if target.steps() != 3 {
		t.Errorf("Expected 3 steps, got %d", target.steps())
	}
	mu.Lock()
	if ticks != 3 {
		t.Errorf("Expected OnTick 3 times, got %d", ticks)
	}
	mu.Unlock()
	if runner.IsRunning() {
		t.Error("Expected runner to report stopped")
	}
}

func TestRunner_StartStop(t *testing.T) {
	target := &fakeTarget{speed: 1, stepping: make(chan struct{}, 1)}
	runner := NewRunner(target, Options{FrameRate: 200})

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start runner: %v", err)
	}
	if err := runner.Start(context.Background()); err != ErrAlreadyRunning {
		t.Errorf("Expected ErrAlreadyRunning, got %v", err)
	}

	select {
	case <-target.stepping:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected at least one frame")
	}

	runner.Stop()
	if runner.IsRunning() {
		t.Error("Expected runner to be stopped")
	}

	steps := target.steps()
	time.Sleep(30 * time.Millisecond)
	if target.steps() != steps {
		t.Error("Expected no frames after Stop")
	}

	if err := runner.Start(context.Background()); err != nil {
		t.Errorf("Expected restart to succeed, got %v", err)
	}
	runner.Stop()
}

func TestRunner_StopWithoutStart(t *testing.T) {
	runner := NewRunner(&fakeTarget{speed: 1}, Options{})

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected Stop on an idle runner to return")
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	runner := NewRunner(&fakeTarget{speed: 1}, Options{FrameRate: 200})
	ctx, cancel := context.WithCancel(context.Background())

	if err := runner.Start(ctx); err != nil {
		t.Fatalf("Failed to start runner: %v", err)
	}
	cancel()

	select {
	case <-runner.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Expected the runner to stop when its context ends")
	}
}

func TestRunner_PauseAndManualStep(t *testing.T) {
	target := &fakeTarget{speed: 2}
	runner := NewRunner(target, Options{FrameRate: 200})
	runner.Pause()

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start runner: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if target.steps() != 0 {
		t.Errorf("Expected no frames while paused, got %d", target.steps())
	}

	result := runner.Step(50)
	if result.DeltaMs != 100 {
		t.Errorf("Expected manual step scaled to 100ms, got %v", result.DeltaMs)
	}

	runner.Resume()
	if runner.IsPaused() {
		t.Error("Expected runner to be resumed")
	}
	runner.Stop()
}
