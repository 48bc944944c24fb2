package sched

import "github.com/google/uuid"

// Transaction is a goal job plus its implied closure of jobs.
type Transaction struct {
	ID string

	// Jobs maps each unit touched by this transaction to its (pre-merge,
	// possibly multiple; post-merge, at most one) jobs.
	Jobs map[*Unit][]*Job

	// Objective is the job this transaction was created to accomplish.
	Objective *Job
}

// NewTransaction creates an empty transaction with a fresh ID.
func NewTransaction() *Transaction {
	return &Transaction{ID: uuid.NewString(), Jobs: make(map[*Unit][]*Job)}
}

// AllJobs returns every job in the transaction, across all units, in no
// particular order.
func (t *Transaction) AllJobs() []*Job {
	out := make([]*Job, 0)
	for _, js := range t.Jobs {
		out = append(out, js...)
	}
	return out
}

// JobsFor returns the jobs currently recorded for unit.
func (t *Transaction) JobsFor(unit *Unit) []*Job {
	return t.Jobs[unit]
}

// AddJob records job under its unit's entry.
func (t *Transaction) AddJob(job *Job) {
	t.Jobs[job.Unit] = append(t.Jobs[job.Unit], job)
}

// RemoveJob deletes job from its unit's entry. It does not touch
// requirements; callers are expected to have already unlinked them (see
// pkg/sched.RemoveRequirement) or to be discarding the whole transaction.
func (t *Transaction) RemoveJob(job *Job) {
	list := t.Jobs[job.Unit]
	for i, j := range list {
		if j == job {
			t.Jobs[job.Unit] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(t.Jobs[job.Unit]) == 0 {
		delete(t.Jobs, job.Unit)
	}
}

// Empty reports whether the transaction has no jobs left.
func (t *Transaction) Empty() bool {
	return len(t.Jobs) == 0
}
