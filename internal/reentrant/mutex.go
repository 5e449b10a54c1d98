// Package reentrant provides a timeout-bounded lock that the same logical
// operation can acquire more than once.
//
// Go has no goroutine identity, so ownership travels in a context.Context:
// Acquire returns a derived context carrying an owner token, and any Acquire
// made with that context (or a context derived from it) re-enters instead of
// waiting. Ownership may be handed to another goroutine by passing the context
// along, which lets an operation keep the lock while finishing work in the
// background after its caller stopped waiting.
package reentrant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTimeout is used when a Mutex is created with a non-positive timeout.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when the lock could not be acquired in time.
	ErrTimeout = errors.New("timed out waiting for lock")
	// ErrCancelled is returned when the caller's context ended before the lock
	// was acquired.
	ErrCancelled = errors.New("cancelled waiting for lock")
)

type ownerKey struct {
	m *Mutex
}

var tokenSeq atomic.Uint64

// token identifies one acquisition. It is never zero-size so distinct
// acquisitions never share an address.
type token struct {
	id uint64
}

// Mutex is a reentrant lock with a bounded wait.
type Mutex struct {
	name    string
	timeout time.Duration
	sem     chan struct{}

	mu    sync.Mutex
	owner *token
	depth int
}

// New creates a Mutex. name is used in error messages.
func New(name string, timeout time.Duration) *Mutex {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Mutex{
		name:    name,
		timeout: timeout,
		sem:     make(chan struct{}, 1),
	}
}

// Timeout returns the acquisition timeout.
func (m *Mutex) Timeout() time.Duration {
	return m.timeout
}

// Acquire takes the lock, or re-enters it when ctx already carries ownership.
// The returned context carries ownership and must be used for nested calls;
// the returned release function must be called exactly once.
func (m *Mutex) Acquire(ctx context.Context) (context.Context, func(), error) {
	if tok, ok := ctx.Value(ownerKey{m}).(*token); ok {
		m.mu.Lock()
		if m.owner == tok {
			m.depth++
			m.mu.Unlock()
			return ctx, m.releaseOnce(), nil
		}
		m.mu.Unlock()
	}

	if err := ctx.Err(); err != nil {
		return ctx, nil, fmt.Errorf("%w: %s: %w", ErrCancelled, m.name, err)
	}

	select {
	case m.sem <- struct{}{}:
	default:
		if err := m.wait(ctx); err != nil {
			return ctx, nil, err
		}
	}

	tok := &token{id: tokenSeq.Add(1)}
	m.mu.Lock()
	m.owner = tok
	m.depth = 1
	m.mu.Unlock()

	return context.WithValue(ctx, ownerKey{m}, tok), m.releaseOnce(), nil
}

// wait blocks until the lock is free, the timeout elapses or ctx ends.
func (m *Mutex) wait(ctx context.Context) error {
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case m.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s after %s", ErrTimeout, m.name, m.timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrCancelled, m.name, ctx.Err())
	}
}

// Held reports whether ctx carries current ownership of the lock.
func (m *Mutex) Held(ctx context.Context) bool {
	tok, ok := ctx.Value(ownerKey{m}).(*token)
	if !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner == tok
}

func (m *Mutex) releaseOnce() func() {
	var once sync.Once
	return func() {
		once.Do(m.release)
	}
}

func (m *Mutex) release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.depth == 0 {
		return
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	m.owner = nil
	<-m.sem
}
