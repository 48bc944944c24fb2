// Package restarter defines the pluggable per-unit-type execution backend
// and a registry keyed by unit-type string, plus a simple built-in
// Restarter for "target" units (grouping units with no physical process of
// their own, mirroring the reference engine's TargetRestarter).
package restarter

import (
	"context"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// Outcome is the asynchronous result a Restarter reports back via
// Scheduler.JobComplete.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// Restarter is a pluggable backend that physically starts/stops units of
// one type. Returning true from Start/Stop means "accepted, will report
// completion asynchronously via the Completer"; returning false is an
// immediate synchronous failure and the scheduler marks the job Failure
// without waiting. Implementations must tolerate being called reentrantly
// for different job ids.
type Restarter interface {
	// Type identifies the unit-type string this Restarter handles.
	Type() string

	Start(ctx context.Context, job sched.JobID, unit sched.UnitID) bool
	Stop(ctx context.Context, job sched.JobID, unit sched.UnitID) bool

	// Reload and Cancel are optional; a Restarter that has no
	// special reload behavior is driven through Start with a
	// distinguishing op, and Cancel may simply be declined (return
	// false) to leave the underlying unit to the restarter's own
	// discretion.
	Reload(ctx context.Context, job sched.JobID, unit sched.UnitID) bool
	Cancel(ctx context.Context, job sched.JobID, unit sched.UnitID) bool
}

// Completer is implemented by the scheduler; Restarters call it to report
// the asynchronous outcome of a Start/Stop/Reload they previously
// accepted.
type Completer interface {
	JobComplete(job sched.JobID, outcome Outcome)
}
