package host

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/microhost/internal/container"
	"github.com/atlanticdynamic/microhost/internal/sequence"
	"github.com/atlanticdynamic/microhost/internal/statemachine"
)

// phase adapts a phase function to an entry callback: success answers OK, an
// error is recorded for the caller and becomes the Failed trigger.
func (h *Host) phase(name string, fn func(ctx context.Context) error) statemachine.EntryFunc[Trigger] {
	return func(ctx context.Context) (Trigger, error) {
		act := h.begin(name, "phase", name)
		defer act.end()

		if err := safeCall(ctx, fn); err != nil {
			h.phaseErr = fmt.Errorf("%s: %w", name, err)
			act.fail(err)
			return TriggerNone, err
		}
		return TriggerOK, nil
	}
}

// enterDown releases everything the previous cycle built.
func (h *Host) enterDown(context.Context) (Trigger, error) {
	h.releaseContainer()
	return TriggerNone, nil
}

func (h *Host) releaseContainer() {
	h.loaders = nil
	h.components = nil

	c := h.container.Swap(nil)
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		h.logger.Warn("Failed to release component container", "error", err)
	}
	h.logger.Debug("Component container released")
}

// enterUnloading undoes Load. Undo failures are logged by the sequence and
// never keep the host from reaching CompiledStopped.
func (h *Host) enterUnloading(ctx context.Context) (Trigger, error) {
	act := h.begin("unload", "phase", "unload")
	defer act.end()

	if err := h.loadSeq.Revert(ctx); err != nil {
		act.fail(err)
	}
	return TriggerDone, nil
}

func (h *Host) configure(ctx context.Context) error {
	c, err := h.newContainer()
	if err != nil {
		return fmt.Errorf("building component container: %w", err)
	}
	h.container.Store(c)

	if err := c.Merge(container.NewBuilder().Register(BootConfigName, h.cfg)); err != nil {
		return fmt.Errorf("registering boot configuration: %w", err)
	}

	loaders, err := h.resolveFeatureLoaders(ctx)
	if err != nil {
		return err
	}
	h.loaders = loaders

	for _, p := range []FeaturePhase{
		PhaseConfigSections,
		PhaseConfiguration,
		PhaseComponents,
		PhaseAdapterComponents,
	} {
		h.runFeaturePhase(ctx, c, p)
	}
	return nil
}

func (h *Host) resolveFeatureLoaders(ctx context.Context) ([]FeatureLoader, error) {
	act := h.begin("resolve feature loaders")
	defer act.end()

	var loaders []FeatureLoader
	if h.moduleLoader != nil {
		found, err := h.moduleLoader.LoadFeatures(ctx, h.cfg)
		if err != nil {
			act.fail(err)
			return nil, fmt.Errorf("loading feature modules: %w", err)
		}
		loaders = append(loaders, found...)
	}
	loaders = append(loaders, h.extraLoaders...)

	for _, l := range loaders {
		h.logger.Debug("Found feature loader", "feature", l.Name())
	}
	return loaders, nil
}

func (h *Host) compile(ctx context.Context) error {
	c := h.container.Load()
	if c == nil {
		return container.ErrClosed
	}

	if h.cfg.Mode.Precompiled {
		h.logger.Info("Precompiled mode, skipping component compilation")
	} else {
		h.runFeaturePhase(ctx, c, PhaseCompileComponents)
		if err := h.compileGenerated(ctx, c); err != nil {
			return err
		}
	}

	h.runFeaturePhase(ctx, c, PhaseCompiledComponents)
	return nil
}

func (h *Host) compileGenerated(ctx context.Context, c *container.Container) error {
	var compileErr error
	h.aroundPhase(ctx, c, PhaseGeneratedComponents, func(ctx context.Context) {
		for _, compiler := range container.ResolveAllNamed[Compiler](c) {
			act := h.begin("compile generated components", "component", compiler.Name)
			if err := safeCall(ctx, compiler.Component.CompileGeneratedComponents); err != nil {
				act.fail(err)
				compileErr = fmt.Errorf("compiler %s: %w", compiler.Name, err)
				return
			}
			act.end()
		}
	})
	return compileErr
}

// runFeaturePhase calls one contribution method on every feature loader. A
// failing loader is logged and skipped; its contributions are discarded.
func (h *Host) runFeaturePhase(ctx context.Context, c *container.Container, p FeaturePhase) {
	entry := featurePhases[p]
	h.aroundPhase(ctx, c, p, func(ctx context.Context) {
		for _, loader := range h.loaders {
			b := container.NewBuilder()
			err := safeCall(ctx, func(ctx context.Context) error {
				return entry.call(loader, ctx, c, b)
			})
			if err == nil {
				err = c.Merge(b)
			}
			if err != nil {
				h.logger.Error("Feature loader failed, skipping",
					"feature", loader.Name(), "phase", p, "error", err)
			}
		}
	})
}

// aroundPhase runs body between the Before and After hooks of every phase
// extension in the container. The After hooks run even when body fails.
func (h *Host) aroundPhase(ctx context.Context, c *container.Container, p FeaturePhase, body func(context.Context)) {
	act := h.begin(p.String(), "phase", p.String())
	defer act.end()

	extensions := container.ResolveAllNamed[PhaseExtension](c)
	for _, ext := range extensions {
		if err := safeCall(ctx, func(ctx context.Context) error {
			return ext.Component.BeforeFeaturePhase(ctx, p)
		}); err != nil {
			h.logger.Warn("Phase extension failed", "component", ext.Name, "hook", "before", "phase", p, "error", err)
		}
	}

	body(ctx)

	for _, ext := range extensions {
		if err := safeCall(ctx, func(ctx context.Context) error {
			return ext.Component.AfterFeaturePhase(ctx, p)
		}); err != nil {
			h.logger.Warn("Phase extension failed", "component", ext.Name, "hook", "after", "phase", p, "error", err)
		}
	}
}

func (h *Host) newLoadSequence() *sequence.Sequence {
	seq := sequence.New("load", sequence.WithLogger(h.logger))
	seq.AddOnce("find lifecycle components", h.findComponents, h.discardComponents)
	h.addComponentStep(seq, stepLoading, stepMaybeUnloaded)
	h.addComponentStep(seq, stepLoad, stepMayUnload)
	h.addComponentStep(seq, stepLoaded, stepMaybeUnloading)
	return seq
}

func (h *Host) newActivateSequence() *sequence.Sequence {
	seq := sequence.New("activate", sequence.WithLogger(h.logger))
	h.addComponentStep(seq, stepActivating, stepMaybeDeactivated)
	h.addComponentStep(seq, stepActivate, stepMayDeactivate)
	h.addComponentStep(seq, stepActivated, stepMaybeDeactivating)
	return seq
}

func (h *Host) addComponentStep(seq *sequence.Sequence, perform, revert componentStep) {
	sequence.AddForEach(seq, perform.String(), h.lifecycleComponents,
		func(ctx context.Context, c container.Named[LifecycleComponent], _ int, _ bool) error {
			return h.callComponent(ctx, c, perform)
		},
		func(ctx context.Context, c container.Named[LifecycleComponent], _ int, _ bool) error {
			return h.callComponent(ctx, c, revert)
		},
	)
}

func (h *Host) lifecycleComponents() []container.Named[LifecycleComponent] {
	return h.components
}

func (h *Host) callComponent(ctx context.Context, c container.Named[LifecycleComponent], step componentStep) error {
	act := h.begin(step.String(), "component", c.Name)
	defer act.end()

	err := safeCall(ctx, func(ctx context.Context) error {
		return componentSteps[step].call(c.Component, ctx)
	})
	if err != nil {
		act.fail(err)
		return fmt.Errorf("component %s: %s: %w", c.Name, step, err)
	}
	return nil
}

func (h *Host) findComponents(context.Context) error {
	c := h.container.Load()
	if c == nil {
		return container.ErrClosed
	}

	h.components = container.ResolveAllNamed[LifecycleComponent](c)
	for _, found := range h.components {
		h.logger.Debug("Found lifecycle component", "component", found.Name)
	}
	if len(h.components) == 0 {
		h.logger.Info("No lifecycle components found")
	}
	return nil
}

func (h *Host) discardComponents(context.Context) error {
	h.components = nil
	return nil
}
