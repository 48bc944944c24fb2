package resolve

import "github.com/InitWare/Neo-InitWare/pkg/sched"

// deleteJobAndDependents removes j and every job that transitively requires
// it via a required requirement, together with all jobs transitively
// depending on them, unlinking requirement links on the way out.
func deleteJobAndDependents(tx *sched.Transaction, j *sched.Job) {
	for _, d := range j.DeletionSet() {
		removeJobFully(tx, d)
	}
}

func removeJobFully(tx *sched.Transaction, job *sched.Job) {
	for _, r := range append([]*sched.Requirement(nil), job.ReqsOut...) {
		sched.RemoveRequirement(r)
	}
	for _, r := range append([]*sched.Requirement(nil), job.ReqsIn...) {
		sched.RemoveRequirement(r)
	}
	tx.RemoveJob(job)
}

// moveRequirements re-parents every requirement link touching from onto to,
// used when two jobs on a unit merge into one survivor: requirement links
// of the deleted job move to the survivor.
func moveRequirements(from, to *sched.Job) {
	for _, r := range append([]*sched.Requirement(nil), from.ReqsOut...) {
		target, required, goalRequired := r.To, r.Required, r.GoalRequired
		sched.RemoveRequirement(r)
		if target == to || to.RequirementOn(target) != nil {
			continue
		}
		to.AddRequirement(target, required, goalRequired)
	}
	for _, r := range append([]*sched.Requirement(nil), from.ReqsIn...) {
		requirer, required, goalRequired := r.From, r.Required, r.GoalRequired
		sched.RemoveRequirement(r)
		if requirer == to || requirer.RequirementOn(to) != nil {
			continue
		}
		requirer.AddRequirement(to, required, goalRequired)
	}
}
