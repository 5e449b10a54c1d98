package host

import (
	"context"

	"github.com/atlanticdynamic/microhost/internal/container"
)

// FeaturePhase identifies one pass over the feature loaders.
type FeaturePhase uint8

const (
	PhaseConfigSections FeaturePhase = iota + 1
	PhaseConfiguration
	PhaseComponents
	PhaseAdapterComponents
	PhaseCompileComponents
	// PhaseGeneratedComponents runs the container's Compilers rather than the
	// feature loaders.
	PhaseGeneratedComponents
	PhaseCompiledComponents
)

type featureCall func(l FeatureLoader, ctx context.Context, c *container.Container, b *container.Builder) error

var featurePhases = map[FeaturePhase]struct {
	name string
	call featureCall
}{
	PhaseConfigSections:    {"ContributeConfigSections", FeatureLoader.ContributeConfigSections},
	PhaseConfiguration:     {"ContributeConfiguration", FeatureLoader.ContributeConfiguration},
	PhaseComponents:        {"ContributeComponents", FeatureLoader.ContributeComponents},
	PhaseAdapterComponents: {"ContributeAdapterComponents", FeatureLoader.ContributeAdapterComponents},
	PhaseCompileComponents: {"CompileComponents", func(l FeatureLoader, ctx context.Context, c *container.Container, _ *container.Builder) error {
		return l.CompileComponents(ctx, c)
	}},
	PhaseGeneratedComponents: {"CompileGeneratedComponents", nil},
	PhaseCompiledComponents:  {"ContributeCompiledComponents", FeatureLoader.ContributeCompiledComponents},
}

func (p FeaturePhase) String() string {
	if entry, ok := featurePhases[p]; ok {
		return entry.name
	}
	return "Unknown"
}

// componentStep identifies one LifecycleComponent method.
type componentStep uint8

const (
	stepLoading componentStep = iota
	stepLoad
	stepLoaded
	stepMaybeUnloaded
	stepMayUnload
	stepMaybeUnloading
	stepActivating
	stepActivate
	stepActivated
	stepMaybeDeactivated
	stepMayDeactivate
	stepMaybeDeactivating
)

var componentSteps = [...]struct {
	name string
	call func(LifecycleComponent, context.Context) error
}{
	stepLoading:           {"MicroserviceLoading", LifecycleComponent.MicroserviceLoading},
	stepLoad:              {"Load", LifecycleComponent.Load},
	stepLoaded:            {"MicroserviceLoaded", LifecycleComponent.MicroserviceLoaded},
	stepMaybeUnloaded:     {"MicroserviceMaybeUnloaded", LifecycleComponent.MicroserviceMaybeUnloaded},
	stepMayUnload:         {"MayUnload", LifecycleComponent.MayUnload},
	stepMaybeUnloading:    {"MicroserviceMaybeUnloading", LifecycleComponent.MicroserviceMaybeUnloading},
	stepActivating:        {"MicroserviceActivating", LifecycleComponent.MicroserviceActivating},
	stepActivate:          {"Activate", LifecycleComponent.Activate},
	stepActivated:         {"MicroserviceActivated", LifecycleComponent.MicroserviceActivated},
	stepMaybeDeactivated:  {"MicroserviceMaybeDeactivated", LifecycleComponent.MicroserviceMaybeDeactivated},
	stepMayDeactivate:     {"MayDeactivate", LifecycleComponent.MayDeactivate},
	stepMaybeDeactivating: {"MicroserviceMaybeDeactivating", LifecycleComponent.MicroserviceMaybeDeactivating},
}

func (s componentStep) String() string {
	return componentSteps[s].name
}
