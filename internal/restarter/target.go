package restarter

import (
	"context"
	"log/slog"

	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// TargetRestarter handles grouping units that have no process of their
// own (systemd-style "target" units): Start and Stop always succeed, and
// completion is reported on the next reactor tick via Defer rather than
// inline, so callers never observe a job complete before it was admitted
// to running_jobs. This is the direct analog of the original daemon's
// TargetRestarter.
type TargetRestarter struct {
	reactor   *reactor.Loop
	completer Completer
	logger    *slog.Logger
}

// NewTargetRestarter creates a TargetRestarter that reports completions
// through loop and completer.
func NewTargetRestarter(loop *reactor.Loop, completer Completer, logger *slog.Logger) *TargetRestarter {
	return &TargetRestarter{reactor: loop, completer: completer, logger: logger.With("component", "restarter-target")}
}

func (t *TargetRestarter) Type() string { return "target" }

func (t *TargetRestarter) Start(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	t.logger.Debug("target start", "job", job, "unit", unit)
	t.reactor.Defer(func() { t.completer.JobComplete(job, OutcomeSuccess) })
	return true
}

func (t *TargetRestarter) Stop(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	t.logger.Debug("target stop", "job", job, "unit", unit)
	t.reactor.Defer(func() { t.completer.JobComplete(job, OutcomeSuccess) })
	return true
}

func (t *TargetRestarter) Reload(ctx context.Context, job sched.JobID, unit sched.UnitID) bool {
	return t.Start(ctx, job, unit)
}

func (t *TargetRestarter) Cancel(_ context.Context, _ sched.JobID, _ sched.UnitID) bool {
	return false
}
