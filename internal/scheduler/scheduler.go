// Package scheduler implements the runtime dispatcher, the load queue
// wiring, and the event sink: it ties the object graph, transaction
// generator, cycle resolver/merger, and restarter registry together into
// the running system. Every exported method must be called from the
// reactor's own goroutine — callers on another goroutine must marshal in
// via (*reactor.Loop).Defer, exactly as a background restarter marshals
// its completion callback.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/resolve"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/internal/txgen"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// Loader is the external collaborator that hydrates a placeholder unit by
// eventually calling (*graph.Graph).Load exactly once.
type Loader interface {
	Load(id sched.UnitID) error
}

// Auditor is an optional side-channel observer of job dispatch and
// completion, for persistence outside the scheduler's own live state (the
// sqlite audit log in internal/audit is one implementation). It is never
// consulted for scheduling decisions.
type Auditor interface {
	RecordDispatch(tx *sched.Transaction, job *sched.Job)
	RecordCompletion(tx *sched.Transaction, job *sched.Job)
}

// Config holds scheduler tunables. The original daemon hardcodes the job
// timeout as a constant; here it is configurable, defaulted to the
// original's value.
type Config struct {
	// DefaultJobTimeout is armed for every dispatched job unless
	// UnitTypeTimeouts names an override for that unit's type.
	DefaultJobTimeout time.Duration
	UnitTypeTimeouts  map[string]time.Duration
}

// DefaultConfig returns the original daemon's 700ms default timeout.
func DefaultConfig() Config {
	return Config{DefaultJobTimeout: 700 * time.Millisecond}
}

// Scheduler is the runtime dispatcher. It implements restarter.Completer.
type Scheduler struct {
	graph      *graph.Graph
	gen        *txgen.Generator
	restarters *restarter.Registry
	reactor    *reactor.Loop
	loader     Loader
	auditor    Auditor
	config     Config
	logger     *slog.Logger

	nextJobID sched.JobID

	// runningJobs holds every job currently dispatched, keyed by its
	// assigned id, mirroring the original daemon's Scheduler.running_jobs.
	runningJobs map[sched.JobID]*sched.Job
	jobTimers   map[sched.JobID]reactor.TimerID

	// queue is the FIFO of transactions; queue[0] is the head currently
	// being dispatched.
	queue []*sched.Transaction
}

// New creates a Scheduler. SetLoader may be called afterward to wire the
// unit-definition loader; until then, newly-referenced placeholder units
// are never hydrated and DispatchLoadQueue-driven generation will leave
// them as stubs with no edges.
func New(g *graph.Graph, restarters *restarter.Registry, loop *reactor.Loop, cfg Config, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	return &Scheduler{
		graph:       g,
		gen:         txgen.New(g, logger),
		restarters:  restarters,
		reactor:     loop,
		config:      cfg,
		logger:      logger,
		runningJobs: make(map[sched.JobID]*sched.Job),
		jobTimers:   make(map[sched.JobID]reactor.TimerID),
	}
}

// SetLoader installs the unit-definition loader used by DispatchLoadQueue.
func (s *Scheduler) SetLoader(l Loader) { s.loader = l }

// SetAuditor installs an optional observer notified on every job dispatch
// and completion. Never required for correct scheduling.
func (s *Scheduler) SetAuditor(a Auditor) { s.auditor = a }

// Enqueue expands (unit, op) into a transaction, hydrating any
// newly-discovered placeholder units first, resolves cycles and merges,
// and appends the result to the transaction queue, starting dispatch
// immediately if the queue was empty.
func (s *Scheduler) Enqueue(unitID sched.UnitID, op sched.JobOp) (*sched.Transaction, error) {
	unit := s.graph.GetOrPlaceholder(unitID)
	if s.loader != nil {
		if err := s.graph.DispatchLoadQueue(s.loader.Load); err != nil {
			return nil, fmt.Errorf("hydrate units: %w", err)
		}
	}

	tx, _ := s.gen.Generate(unit, op)
	if err := resolve.Resolve(tx); err != nil {
		return nil, err
	}

	s.logger.Info("transaction enqueued", "unit", unitID, "op", op, "jobs", len(tx.AllJobs()))
	s.queue = append(s.queue, tx)
	if len(s.queue) == 1 {
		s.dispatchRunnable(tx)
	}
	return tx, nil
}

// dispatchRunnable walks tx's jobs once and dispatches every currently
// runnable one.
func (s *Scheduler) dispatchRunnable(tx *sched.Transaction) {
	edges := orderEdges(tx)
	for _, job := range tx.AllJobs() {
		if runnable(tx, job, edges) {
			s.dispatch(tx, job)
		}
	}
}

// dispatch assigns job its id (if unassigned), admits it to running_jobs,
// arms its timeout timer, and invokes the restarter method matching its
// op.
func (s *Scheduler) dispatch(tx *sched.Transaction, job *sched.Job) {
	if job.ID == 0 {
		s.nextJobID++
		job.ID = s.nextJobID
	}
	job.State = sched.JobRunning
	s.runningJobs[job.ID] = job
	if s.auditor != nil {
		s.auditor.RecordDispatch(tx, job)
	}

	timeout := s.config.DefaultJobTimeout
	if d, ok := s.config.UnitTypeTimeouts[job.Unit.Type]; ok {
		timeout = d
	}
	jobID := job.ID
	timerID, err := s.reactor.AddTimer(false, timeout, func(reactor.TimerID) {
		s.onTimeout(jobID)
	})
	if err == nil {
		s.jobTimers[job.ID] = timerID
	} else {
		s.logger.Error("failed to arm job timer", "job", job.ID, "unit", job.Unit.Principal(), "error", err)
	}

	rs, err := s.restarters.Get(job.Unit.Type)
	if err != nil {
		s.logger.Error("no restarter for unit type", "unit", job.Unit.Principal(), "type", job.Unit.Type, "error", err)
		s.finishJob(tx, job, sched.JobFailure)
		return
	}

	ctx := context.Background()
	var accepted bool
	switch job.Op {
	case sched.OpStop:
		accepted = rs.Stop(ctx, job.ID, job.Unit.Principal())
	case sched.OpReload, sched.OpTryReload, sched.OpReloadOrStart:
		accepted = rs.Reload(ctx, job.ID, job.Unit.Principal())
	default:
		accepted = rs.Start(ctx, job.ID, job.Unit.Principal())
	}
	if !accepted {
		s.finishJob(tx, job, sched.JobFailure)
	}
}

func (s *Scheduler) onTimeout(jobID sched.JobID) {
	job, ok := s.runningJobs[jobID]
	if !ok {
		return // already completed and removed
	}
	delete(s.jobTimers, jobID)
	tx := s.transactionOf(job)
	if tx == nil {
		return
	}
	s.logLine(job, sched.JobTimeout)
	s.finishJob(tx, job, sched.JobTimeout)
}

// JobComplete implements restarter.Completer: a Restarter calls this
// (directly, or via reactor.Defer from a background goroutine) to report
// the asynchronous outcome of a Start/Stop/Reload it previously accepted.
func (s *Scheduler) JobComplete(jobID sched.JobID, outcome restarter.Outcome) {
	job, ok := s.runningJobs[jobID]
	if !ok {
		s.logger.Warn("job_complete for unknown job", "job", jobID)
		return
	}
	tx := s.transactionOf(job)
	if tx == nil {
		s.logger.Warn("job_complete for job with no owning transaction", "job", jobID)
		return
	}

	state := sched.JobSuccess
	if outcome == restarter.OutcomeFailure {
		state = sched.JobFailure
	}
	s.logLine(job, state)
	s.finishJob(tx, job, state)
}

// finishJob cancels the job's timer, records its terminal state, applies
// the Restart-promotion special case, propagates failure to requirers, and
// re-checks runnability of units waiting on this one, per the dispatcher's
// completion steps.
func (s *Scheduler) finishJob(tx *sched.Transaction, job *sched.Job, state sched.JobState) {
	if timerID, ok := s.jobTimers[job.ID]; ok {
		s.reactor.DelTimer(timerID)
		delete(s.jobTimers, job.ID)
	}
	delete(s.runningJobs, job.ID)
	job.State = state
	if s.auditor != nil {
		s.auditor.RecordCompletion(tx, job)
	}

	if state == sched.JobSuccess && job.Op == sched.OpRestart {
		job.Op = sched.OpStart
		job.State = sched.JobAwaiting
		s.continueTransaction(tx)
		return
	}

	if job.State.Failed() {
		s.propagateFailure(tx, job)
	}

	s.continueTransaction(tx)
}

// propagateFailure fails every requirer that held a required requirement
// on job, recursively, with bounded fan-out: non-required requirers are
// left to continue independently.
func (s *Scheduler) propagateFailure(tx *sched.Transaction, job *sched.Job) {
	for _, req := range job.ReqsIn {
		if !req.Required {
			continue
		}
		requirer := req.From
		if requirer.State.IsTerminal() {
			continue
		}
		if timerID, ok := s.jobTimers[requirer.ID]; ok {
			s.reactor.DelTimer(timerID)
			delete(s.jobTimers, requirer.ID)
		}
		delete(s.runningJobs, requirer.ID)
		requirer.State = sched.JobCancelled
		s.logLine(requirer, sched.JobCancelled)
		s.propagateFailure(tx, requirer)
	}
}

// continueTransaction re-dispatches any job now runnable, then pops the
// transaction once it is done: its objective (if it has one — a
// pseudo-transaction from the event sink may not) has reached a terminal
// state, or, lacking an objective, every one of its jobs has.
func (s *Scheduler) continueTransaction(tx *sched.Transaction) {
	s.dispatchRunnable(tx)

	if transactionDone(tx) {
		s.popTransaction(tx)
	}
}

func transactionDone(tx *sched.Transaction) bool {
	if tx.Objective != nil {
		return tx.Objective.State.IsTerminal()
	}
	for _, j := range tx.AllJobs() {
		if !j.State.IsTerminal() {
			return false
		}
	}
	return true
}

func (s *Scheduler) popTransaction(tx *sched.Transaction) {
	if len(s.queue) == 0 || s.queue[0] != tx {
		return
	}
	s.queue = s.queue[1:]
	if tx.Objective != nil {
		s.logger.Info("transaction complete", "objective_unit", tx.Objective.Unit.Principal(), "objective_state", tx.Objective.State)
	} else {
		s.logger.Info("pseudo-transaction complete", "jobs", len(tx.AllJobs()))
	}
	if len(s.queue) > 0 {
		s.dispatchRunnable(s.queue[0])
	}
}

// transactionOf finds the transaction currently owning job. Jobs are only
// ever live in the head of the queue or, transiently, a just-merged
// pseudo-transaction, so a linear scan is sufficient.
func (s *Scheduler) transactionOf(job *sched.Job) *sched.Transaction {
	for _, tx := range s.queue {
		for _, j := range tx.AllJobs() {
			if j == job {
				return tx
			}
		}
	}
	return nil
}

// Queue returns a snapshot of the transactions currently queued, head
// first, for inspection by the admin API. Like every other exported
// method, it must be called from the reactor's own goroutine.
func (s *Scheduler) Queue() []*sched.Transaction {
	out := make([]*sched.Transaction, len(s.queue))
	copy(out, s.queue)
	return out
}

// DispatchLoadQueue asks the loader to hydrate every unit referenced but
// not yet loaded. Exposed directly for callers (e.g. a CLI "reload" path)
// that want hydration without an accompanying Enqueue.
func (s *Scheduler) DispatchLoadQueue() error {
	if s.loader == nil {
		return schederr.New(schederr.CodeOsError, "", "no loader configured")
	}
	return s.graph.DispatchLoadQueue(s.loader.Load)
}

// Shutdown cancels every job in every queued transaction, matching the
// original daemon's process model: SIGINT/SIGTERM trigger graceful
// cancellation, with no persisted state.
// Running jobs are offered to the restarter's Cancel entry; a decline still
// counts as Cancelled from the scheduler's point of view.
func (s *Scheduler) Shutdown(ctx context.Context) {
	for _, tx := range s.queue {
		for _, job := range tx.AllJobs() {
			if job.State.IsTerminal() {
				continue
			}
			if job.State == sched.JobRunning {
				if rs, err := s.restarters.Get(job.Unit.Type); err == nil {
					rs.Cancel(ctx, job.ID, job.Unit.Principal())
				}
				if timerID, ok := s.jobTimers[job.ID]; ok {
					s.reactor.DelTimer(timerID)
					delete(s.jobTimers, job.ID)
				}
				delete(s.runningJobs, job.ID)
			}
			job.State = sched.JobCancelled
		}
	}
	s.queue = nil
	s.logger.Info("scheduler shut down, all transactions cancelled")
}
