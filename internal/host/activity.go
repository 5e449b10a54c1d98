package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// activity is a scoped log record for one phase or component call.
type activity struct {
	logger *slog.Logger
	name   string
	start  time.Time
	failed bool
}

func (h *Host) begin(name string, attrs ...any) *activity {
	logger := h.logger.With(attrs...)
	logger.Debug("Begin " + name)
	return &activity{logger: logger, name: name, start: time.Now()}
}

func (a *activity) fail(err error) {
	a.failed = true
	a.logger.Error("Failed "+a.name, "duration", time.Since(a.start), "error", err)
}

func (a *activity) end() {
	if a.failed {
		return
	}
	a.logger.Debug("End "+a.name, "duration", time.Since(a.start))
}

// safeCall runs fn and converts a panic into ErrComponentPanic.
func safeCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrComponentPanic, r)
		}
	}()
	return fn(ctx)
}
