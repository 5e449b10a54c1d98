// Package container is a small component container: components are
// registered by name into a Builder, merged into a Container, and resolved by
// the interfaces they implement.
package container

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

var (
	ErrDuplicateComponent = errors.New("component already registered")
	ErrEmptyName          = errors.New("component name is empty")
	ErrNilComponent       = errors.New("component is nil")
	ErrClosed             = errors.New("container is closed")
	ErrNotFound           = errors.New("component not found")
)

type entry struct {
	name      string
	component any
}

// Builder collects components before they are merged into a Container.
type Builder struct {
	entries []entry
	errs    []error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a component. Registration problems are reported by Merge.
func (b *Builder) Register(name string, component any) *Builder {
	switch {
	case name == "":
		b.errs = append(b.errs, ErrEmptyName)
	case component == nil:
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrNilComponent, name))
	default:
		b.entries = append(b.entries, entry{name: name, component: component})
	}
	return b
}

// Len returns the number of registered components.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Container holds merged components in registration order.
type Container struct {
	mu      sync.RWMutex
	entries []entry
	byName  map[string]int
	closed  bool
	logger  *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogHandler sets the handler used for close diagnostics.
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Container) {
		if handler != nil {
			c.logger = slog.New(handler).WithGroup("container.Container")
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		byName: make(map[string]int),
		logger: slog.Default().WithGroup("container.Container"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Merge moves every component of b into the container. Nothing is merged when
// any registration is invalid or a name collides.
func (c *Container) Merge(b *Builder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	errs := append([]error(nil), b.errs...)
	seen := make(map[string]struct{}, len(b.entries))
	for _, e := range b.entries {
		if _, ok := c.byName[e.name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateComponent, e.name))
		}
		if _, ok := seen[e.name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateComponent, e.name))
		}
		seen[e.name] = struct{}{}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, e := range b.entries {
		c.byName[e.name] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	b.entries = nil
	return nil
}

// Len returns the number of components.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns component names in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	return names
}

// Get returns the component registered under name.
func (c *Container) Get(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c.entries[i].component, nil
}

func (c *Container) snapshot() []entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entry(nil), c.entries...)
}

// Close closes every component implementing io.Closer, newest first, and
// empties the container. Close is idempotent.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	entries := c.entries
	c.entries = nil
	c.byName = map[string]int{}
	c.mu.Unlock()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		closer, ok := entries[i].component.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			c.logger.Warn("Failed to close component", "name", entries[i].name, "error", err)
			errs = append(errs, fmt.Errorf("closing %s: %w", entries[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// ResolveAll returns every component assignable to T, in registration order.
func ResolveAll[T any](c *Container) []T {
	var found []T
	for _, e := range c.snapshot() {
		if v, ok := e.component.(T); ok {
			found = append(found, v)
		}
	}
	return found
}

// Named pairs a resolved component with its registration name.
type Named[T any] struct {
	Name      string
	Component T
}

// ResolveAllNamed is ResolveAll keeping registration names.
func ResolveAllNamed[T any](c *Container) []Named[T] {
	var found []Named[T]
	for _, e := range c.snapshot() {
		if v, ok := e.component.(T); ok {
			found = append(found, Named[T]{Name: e.name, Component: v})
		}
	}
	return found
}
