package sched

import "github.com/google/uuid"

// JobID is a unique 64-bit integer assigned lazily when a job is admitted
// to execution (dispatched for the first time).
type JobID int64

// Requirement is a directed link from one job to another. Its lifetime is
// tied jointly to both endpoints: removing either endpoint removes the
// requirement from the other's side.
type Requirement struct {
	From *Job
	To   *Job
	// Required: To's failure fails From.
	Required bool
	// GoalRequired: To's failure fails the transaction objective.
	GoalRequired bool
}

// Job is a single pending operation on one unit inside a Transaction.
type Job struct {
	// ID is 0 (unassigned) until the job is admitted to running_jobs.
	ID   JobID
	Unit *Unit
	Op   JobOp

	State JobState

	// TimerHandle is a slot for the reactor timer id of this job's
	// timeout. The scheduler does not set it; it tracks timeout timers in
	// its own per-job map instead.
	TimerHandle any

	// ReqsOut holds requirements this job depends on (this job is the
	// requirer / From side).
	ReqsOut []*Requirement
	// ReqsIn holds requirements depending on this job (this job is the
	// To side).
	ReqsIn []*Requirement

	// GoalRequired is set if this job is, transitively via required
	// requirements, essential to the transaction's objective.
	GoalRequired bool

	// CorrelationID identifies this job in logs and the admin API,
	// independent of the lazily-assigned numeric ID.
	CorrelationID string
}

// NewJob creates an Awaiting job for unit/op with a fresh correlation ID.
func NewJob(unit *Unit, op JobOp) *Job {
	return &Job{
		Unit:          unit,
		Op:            op,
		State:         JobAwaiting,
		CorrelationID: uuid.NewString(),
	}
}

// AddRequirement links from (this job) as depending on to, creating a
// Requirement recorded on both sides.
func (from *Job) AddRequirement(to *Job, required, goalRequired bool) *Requirement {
	req := &Requirement{From: from, To: to, Required: required, GoalRequired: goalRequired}
	from.ReqsOut = append(from.ReqsOut, req)
	to.ReqsIn = append(to.ReqsIn, req)
	return req
}

// RemoveRequirement deletes req from both endpoints' requirement lists.
func RemoveRequirement(req *Requirement) {
	req.From.ReqsOut = removeReq(req.From.ReqsOut, req)
	req.To.ReqsIn = removeReq(req.To.ReqsIn, req)
}

func removeReq(list []*Requirement, target *Requirement) []*Requirement {
	for i, r := range list {
		if r == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// RequirementOn returns the requirement (if any) this job holds on target.
func (j *Job) RequirementOn(target *Job) *Requirement {
	for _, r := range j.ReqsOut {
		if r.To == target {
			return r
		}
	}
	return nil
}

// Requirers returns the jobs that hold a requirement on j (the From side of
// each entry in j.ReqsIn).
func (j *Job) Requirers() []*Job {
	out := make([]*Job, 0, len(j.ReqsIn))
	for _, r := range j.ReqsIn {
		out = append(out, r.From)
	}
	return out
}

// DeletionSet returns j plus every job that transitively requires j via a
// Required requirement — the set that must be deleted together to remove j
// cleanly from a transaction, used by cycle resolution and by the merge
// step's deletion of a losing job.
func (j *Job) DeletionSet() []*Job {
	seen := map[*Job]bool{j: true}
	queue := []*Job{j}
	out := []*Job{j}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, req := range cur.ReqsIn {
			if !req.Required {
				continue
			}
			if seen[req.From] {
				continue
			}
			seen[req.From] = true
			out = append(out, req.From)
			queue = append(queue, req.From)
		}
	}
	return out
}
