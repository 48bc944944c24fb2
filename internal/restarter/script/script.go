// Package script implements a JavaScript-backed Restarter using goja. It
// is grounded on the reference engine's goja-based CWL expression
// evaluator (internal/cwlexpr) and on the original schedulerd daemon,
// which shipped its own JS-backed restarter (js/restarter.cc) alongside a
// scripting binding layer for unit definitions. Only the restarter piece
// is in scope here: a full scripting layer for *defining* units is a
// separate concern, but a Restarter that happens to be implemented in JS
// is just another pluggable backend.
package script

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// Restarter runs a small JS program exposing start(unitId) and
// stop(unitId) functions. Each function returns a bool; true is
// synchronously accepted and reported as success on the next reactor
// tick, false is an immediate synchronous rejection.
type Restarter struct {
	unitType  string
	source    string
	reactor   *reactor.Loop
	completer restarter.Completer
	logger    *slog.Logger
}

// New compiles nothing up front (goja.Runtime is not safe to share across
// goroutines, and restarters must tolerate reentrant calls for different
// jobs, so a fresh Runtime is created per call).
func New(unitType, source string, loop *reactor.Loop, completer restarter.Completer, logger *slog.Logger) *Restarter {
	return &Restarter{
		unitType:  unitType,
		source:    source,
		reactor:   loop,
		completer: completer,
		logger:    logger.With("component", "restarter-script", "unit_type", unitType),
	}
}

func (r *Restarter) Type() string { return r.unitType }

func (r *Restarter) call(fn string, unit sched.UnitID) (bool, error) {
	vm := goja.New()
	if _, err := vm.RunString(r.source); err != nil {
		return false, fmt.Errorf("load script: %w", err)
	}
	callable, ok := goja.AssertFunction(vm.Get(fn))
	if !ok {
		return false, fmt.Errorf("script defines no %s(unit) function", fn)
	}
	result, err := callable(goja.Undefined(), vm.ToValue(string(unit)))
	if err != nil {
		return false, fmt.Errorf("run %s: %w", fn, err)
	}
	return result.ToBoolean(), nil
}

func (r *Restarter) Start(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	ok, err := r.call("start", unit)
	if err != nil {
		r.logger.Error("script start failed", "unit", unit, "error", err)
		return false
	}
	if !ok {
		return false
	}
	outcome := restarter.OutcomeSuccess
	r.reactor.Defer(func() { r.completer.JobComplete(job, outcome) })
	return true
}

func (r *Restarter) Stop(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	ok, err := r.call("stop", unit)
	if err != nil {
		r.logger.Error("script stop failed", "unit", unit, "error", err)
		return false
	}
	if !ok {
		return false
	}
	outcome := restarter.OutcomeSuccess
	r.reactor.Defer(func() { r.completer.JobComplete(job, outcome) })
	return true
}

func (r *Restarter) Reload(ctx context.Context, job sched.JobID, unit sched.UnitID) bool {
	return r.Start(ctx, job, unit)
}

func (r *Restarter) Cancel(_ context.Context, _ sched.JobID, _ sched.UnitID) bool {
	return false
}
