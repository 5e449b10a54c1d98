package host

import (
	"context"

	"github.com/atlanticdynamic/microhost/internal/config"
	"github.com/atlanticdynamic/microhost/internal/container"
)

// FeatureLoader contributes configuration and components while the host is
// configured and compiled. Each contribution method receives the container as
// built so far, and a builder whose registrations are merged when the method
// returns without error.
type FeatureLoader interface {
	Name() string
	ContributeConfigSections(ctx context.Context, c *container.Container, b *container.Builder) error
	ContributeConfiguration(ctx context.Context, c *container.Container, b *container.Builder) error
	ContributeComponents(ctx context.Context, c *container.Container, b *container.Builder) error
	ContributeAdapterComponents(ctx context.Context, c *container.Container, b *container.Builder) error
	CompileComponents(ctx context.Context, c *container.Container) error
	ContributeCompiledComponents(ctx context.Context, c *container.Container, b *container.Builder) error
}

// LifecycleComponent is notified as the host loads, activates, deactivates and
// unloads. The Maybe and May methods undo their forward counterparts and are
// called in reverse order.
type LifecycleComponent interface {
	MicroserviceLoading(ctx context.Context) error
	Load(ctx context.Context) error
	MicroserviceLoaded(ctx context.Context) error
	MicroserviceActivating(ctx context.Context) error
	Activate(ctx context.Context) error
	MicroserviceActivated(ctx context.Context) error

	MicroserviceMaybeDeactivating(ctx context.Context) error
	MayDeactivate(ctx context.Context) error
	MicroserviceMaybeDeactivated(ctx context.Context) error
	MicroserviceMaybeUnloading(ctx context.Context) error
	MayUnload(ctx context.Context) error
	MicroserviceMaybeUnloaded(ctx context.Context) error
}

// Compiler is a container component that generates code or models while the
// host compiles. A failing Compiler fails the compile phase.
type Compiler interface {
	CompileGeneratedComponents(ctx context.Context) error
}

// PhaseExtension is a container component called once before and once after
// each feature phase, including generated-component compilation. Its errors
// are logged.
type PhaseExtension interface {
	BeforeFeaturePhase(ctx context.Context, phase FeaturePhase) error
	AfterFeaturePhase(ctx context.Context, phase FeaturePhase) error
}

// ModuleLoader resolves the feature loaders named by the boot configuration.
type ModuleLoader interface {
	LoadFeatures(ctx context.Context, cfg *config.BootConfig) ([]FeatureLoader, error)
}

// FeatureLoaderBase implements every FeatureLoader method except Name as a
// no-op, for embedding.
type FeatureLoaderBase struct{}

func (FeatureLoaderBase) ContributeConfigSections(context.Context, *container.Container, *container.Builder) error {
	return nil
}

func (FeatureLoaderBase) ContributeConfiguration(context.Context, *container.Container, *container.Builder) error {
	return nil
}

func (FeatureLoaderBase) ContributeComponents(context.Context, *container.Container, *container.Builder) error {
	return nil
}

func (FeatureLoaderBase) ContributeAdapterComponents(context.Context, *container.Container, *container.Builder) error {
	return nil
}

func (FeatureLoaderBase) CompileComponents(context.Context, *container.Container) error {
	return nil
}

func (FeatureLoaderBase) ContributeCompiledComponents(context.Context, *container.Container, *container.Builder) error {
	return nil
}

// ComponentBase implements LifecycleComponent with no-ops, for embedding.
type ComponentBase struct{}

var _ LifecycleComponent = ComponentBase{}

func (ComponentBase) MicroserviceLoading(context.Context) error {
	return nil
}

func (ComponentBase) Load(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceLoaded(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceActivating(context.Context) error {
	return nil
}

func (ComponentBase) Activate(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceActivated(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceMaybeDeactivating(context.Context) error {
	return nil
}

func (ComponentBase) MayDeactivate(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceMaybeDeactivated(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceMaybeUnloading(context.Context) error {
	return nil
}

func (ComponentBase) MayUnload(context.Context) error {
	return nil
}

func (ComponentBase) MicroserviceMaybeUnloaded(context.Context) error {
	return nil
}
