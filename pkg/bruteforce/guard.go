// Package bruteforce counts failed authentication attempts per key and
// blocks further attempts once a threshold is reached inside a fixed window.
package bruteforce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/pressauth/pkg/slogx"
)

// ErrTooManyAttempts is matched by errors.Is on every *LockedError.
var ErrTooManyAttempts = errors.New("bruteforce: too many attempts")

const (
	DefaultLimit  = 10
	DefaultWindow = 60 * time.Minute
)

// Record is the failure counter stored for a key.
type Record struct {
	Count       int
	WindowStart time.Time
}

// Store persists attempt records. Increment must be atomic per key: it either
// starts a new window at now (count 1) when none exists or the current one is
// older than window, or bumps the count of the active window.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Increment(ctx context.Context, key string, now time.Time, window time.Duration) (Record, error)
	// Decrement hands back one attempt. It never drops a count below zero.
	Decrement(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
	Reset(ctx context.Context) error
	// Prune removes records whose window started before the cutoff.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// LockedError reports a blocked key and when it unlocks.
type LockedError struct {
	Key        string
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("bruteforce: key %q locked for %s", e.Key, e.RetryAfter.Round(time.Second))
}

func (e *LockedError) Unwrap() error { return ErrTooManyAttempts }

// Guard gates authentication attempts. Zero Limit and Window fall back to the
// defaults; a nil Now uses time.Now.
type Guard struct {
	Store  Store
	Limit  int
	Window time.Duration
	Now    func() time.Time
}

// NewGuard returns a Guard with the given store and policy.
func NewGuard(store Store, limit int, window time.Duration) *Guard {
	return &Guard{Store: store, Limit: limit, Window: window}
}

// Attempt reserves one attempt for key before the credential is checked.
// The reservation counts as a failure unless it is handed back with Release
// or wiped by Success. Once the count exceeds Limit inside the active window
// Attempt fails with a *LockedError.
func (g *Guard) Attempt(ctx context.Context, key string) error {
	now := g.now()

	rec, err := g.Store.Increment(ctx, key, now, g.window())
	if err != nil {
		return fmt.Errorf("bruteforce: increment %q: %w", key, err)
	}
	if rec.Count <= g.limit() {
		return nil
	}

	if rec.Count == g.limit()+1 {
		slogx.FromContext(ctx).Warn("bruteforce: key locked",
			"key", key,
			"count", rec.Count-1,
			"window_start", rec.WindowStart,
		)
	}
	return &LockedError{Key: key, RetryAfter: rec.WindowStart.Add(g.window()).Sub(now)}
}

// Release hands back the attempt reserved by Attempt when the outcome was
// neither a success nor a countable failure.
func (g *Guard) Release(ctx context.Context, key string) error {
	if err := g.Store.Decrement(ctx, key); err != nil {
		return fmt.Errorf("bruteforce: decrement %q: %w", key, err)
	}
	return nil
}

// Success clears the record for key.
func (g *Guard) Success(ctx context.Context, key string) error {
	if err := g.Store.Delete(ctx, key); err != nil {
		return fmt.Errorf("bruteforce: delete %q: %w", key, err)
	}
	return nil
}

// Clear wipes every record.
func (g *Guard) Clear(ctx context.Context) error {
	if err := g.Store.Reset(ctx); err != nil {
		return fmt.Errorf("bruteforce: reset: %w", err)
	}
	return nil
}

// Prune drops records whose window has already closed.
func (g *Guard) Prune(ctx context.Context) (int64, error) {
	n, err := g.Store.Prune(ctx, g.now().Add(-g.window()))
	if err != nil {
		return 0, fmt.Errorf("bruteforce: prune: %w", err)
	}
	return n, nil
}

// PasswordKey identifies password grant attempts by client IP and username.
func PasswordKey(ip, email string) string {
	return ip + ":" + email
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Guard) limit() int {
	if g.Limit > 0 {
		return g.Limit
	}
	return DefaultLimit
}

func (g *Guard) window() time.Duration {
	if g.Window > 0 {
		return g.Window
	}
	return DefaultWindow
}
