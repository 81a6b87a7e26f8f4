package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter bounds token consumption to a per-minute budget. Unlike a
// request limiter, callers declare how many tokens a call will spend and
// block until the window has room for all of them.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter with the given tokens-per-minute budget.
func NewTokenLimiter(maxTokenPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxTokenPerMinute,
		windowStart: time.Now(),
	}
}

// Wait blocks until the given number of tokens fits in the current minute
// window, then reserves them. A request larger than the whole budget is
// allowed through once the window is empty.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if now.Sub(l.windowStart) >= time.Minute {
			l.used = 0
			l.windowStart = now
		}
		if l.used == 0 || l.used+tokens <= l.maxPerMin {
			l.used += tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(l.windowStart)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.windowStart) >= time.Minute {
		return l.maxPerMin
	}
	remaining := l.maxPerMin - l.used
	if remaining < 0 {
		return 0
	}
	return remaining
}
