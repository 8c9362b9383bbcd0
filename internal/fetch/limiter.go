// Package fetch provides the shared plumbing for the two source clients:
// a run-scoped rate limiter and a TTL cache keyed by query signature.
// Every network call a run makes is serialized through one Limiter.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once a run has spent its request ceiling.
// Calls past the ceiling are refused, not queued.
var ErrBudgetExhausted = eris.New("fetch: request budget exhausted")

// Limiter enforces a minimum inter-request delay and a hard per-run request
// cap. Construct one per run and pass it into both clients; there is no
// package-level limiter state.
type Limiter struct {
	mu          sync.Mutex
	rl          *rate.Limiter
	maxRequests int
	used        int
}

// NewLimiter builds a run-scoped limiter. minDelay is the spacing between
// consecutive requests; maxRequests caps the run (0 means uncapped).
func NewLimiter(minDelay time.Duration, maxRequests int) *Limiter {
	lim := rate.Inf
	if minDelay > 0 {
		lim = rate.Every(minDelay)
	}
	return &Limiter{
		rl:          rate.NewLimiter(lim, 1),
		maxRequests: maxRequests,
	}
}

// Acquire reserves one request slot, sleeping as needed to honor the minimum
// delay. It fails immediately with ErrBudgetExhausted when the cap is hit.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.maxRequests > 0 && l.used >= l.maxRequests {
		l.mu.Unlock()
		return ErrBudgetExhausted
	}
	l.used++
	l.mu.Unlock()

	if err := l.rl.Wait(ctx); err != nil {
		return eris.Wrap(err, "fetch: limiter wait")
	}
	return nil
}

// Used returns how many request slots this run has consumed.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.used
}

// Remaining returns the slots left in the budget, or -1 when uncapped.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxRequests <= 0 {
		return -1
	}
	return l.maxRequests - l.used
}
