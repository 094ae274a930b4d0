package advisor

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

const DefaultTimeout = 20 * time.Second

// Dispatcher runs advisor calls in the background so they never hold up a tick
type Dispatcher struct {
	advisor Advisor
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher wraps advisor. A zero timeout uses DefaultTimeout.
func NewDispatcher(advisor Advisor, timeout time.Duration) *Dispatcher {
	if advisor == nil {
		advisor = Static(OfflineAdvice)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{advisor: advisor, timeout: timeout}
}

// Request asks for advice on state and towers and hands the text to deliver from
// another goroutine. It returns immediately.
func (d *Dispatcher) Request(state engine.GameState, towers []engine.Tower, deliver func(string)) {
	towers = append([]engine.Tower(nil), towers...)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		text := d.advisor.Advise(ctx, state, towers)
		if deliver != nil {
			deliver(text)
		}
	}()
}

// Wait blocks until every outstanding request has delivered
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
