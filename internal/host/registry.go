package host

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/atlanticdynamic/microhost/internal/config"
)

// FeatureFactory builds a feature loader from the feature's settings table.
type FeatureFactory func(settings map[string]any) (FeatureLoader, error)

// Registry is a ModuleLoader that maps feature names in the boot
// configuration to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FeatureFactory
}

var _ ModuleLoader = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FeatureFactory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory FeatureFactory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%w: name and factory are required", ErrInvalidFeature)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, name)
	}
	r.factories[name] = factory
	return nil
}

// Names returns the registered feature names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LoadFeatures builds one loader per configured feature, in configuration
// order. An unknown feature name or a failing factory fails the whole call.
func (r *Registry) LoadFeatures(_ context.Context, cfg *config.BootConfig) ([]FeatureLoader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loaders := make([]FeatureLoader, 0, len(cfg.Features))
	for _, spec := range cfg.Features {
		factory, ok := r.factories[spec.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, spec.Name)
		}
		loader, err := factory(spec.Settings)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", spec.Name, err)
		}
		loaders = append(loaders, loader)
	}
	return loaders, nil
}
