package mocks

import (
	"context"
	"sync"
)

// Journal records lifecycle calls across components in call order.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the recorded calls, formatted "component.Method".
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// Reset clears the journal.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
}

// RecordingComponent is a host.LifecycleComponent that writes every call to
// a Journal. Individual methods can be made to fail, panic or block.
type RecordingComponent struct {
	name    string
	journal *Journal

	mu     sync.Mutex
	fail   map[string]error
	panics map[string]any
	block  map[string]<-chan struct{}
}

// NewRecordingComponent creates a component named name writing to journal.
func NewRecordingComponent(name string, journal *Journal) *RecordingComponent {
	return &RecordingComponent{
		name:    name,
		journal: journal,
		fail:    make(map[string]error),
		panics:  make(map[string]any),
		block:   make(map[string]<-chan struct{}),
	}
}

// FailOn makes method return err.
func (c *RecordingComponent) FailOn(method string, err error) *RecordingComponent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail[method] = err
	return c
}

// PanicOn makes method panic with value.
func (c *RecordingComponent) PanicOn(method string, value any) *RecordingComponent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics[method] = value
	return c
}

// BlockOn makes method wait until release is closed.
func (c *RecordingComponent) BlockOn(method string, release <-chan struct{}) *RecordingComponent {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block[method] = release
	return c
}

func (c *RecordingComponent) String() string {
	return c.name
}

func (c *RecordingComponent) record(method string) error {
	c.journal.add(c.name + "." + method)

	c.mu.Lock()
	release := c.block[method]
	value, panics := c.panics[method]
	err := c.fail[method]
	c.mu.Unlock()

	if release != nil {
		<-release
	}
	if panics {
		panic(value)
	}
	return err
}

func (c *RecordingComponent) MicroserviceLoading(context.Context) error {
	return c.record("MicroserviceLoading")
}

func (c *RecordingComponent) Load(context.Context) error {
	return c.record("Load")
}

func (c *RecordingComponent) MicroserviceLoaded(context.Context) error {
	return c.record("MicroserviceLoaded")
}

func (c *RecordingComponent) MicroserviceActivating(context.Context) error {
	return c.record("MicroserviceActivating")
}

func (c *RecordingComponent) Activate(context.Context) error {
	return c.record("Activate")
}

func (c *RecordingComponent) MicroserviceActivated(context.Context) error {
	return c.record("MicroserviceActivated")
}

func (c *RecordingComponent) MicroserviceMaybeDeactivating(context.Context) error {
	return c.record("MicroserviceMaybeDeactivating")
}

func (c *RecordingComponent) MayDeactivate(context.Context) error {
	return c.record("MayDeactivate")
}

func (c *RecordingComponent) MicroserviceMaybeDeactivated(context.Context) error {
	return c.record("MicroserviceMaybeDeactivated")
}

func (c *RecordingComponent) MicroserviceMaybeUnloading(context.Context) error {
	return c.record("MicroserviceMaybeUnloading")
}

func (c *RecordingComponent) MayUnload(context.Context) error {
	return c.record("MayUnload")
}

func (c *RecordingComponent) MicroserviceMaybeUnloaded(context.Context) error {
	return c.record("MicroserviceMaybeUnloaded")
}
