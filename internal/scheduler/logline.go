package scheduler

import (
	"fmt"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// bracketFor renders the right column of a completion log line, matching
// the original daemon's literal bracket strings.
func bracketFor(state sched.JobState) string {
	switch state {
	case sched.JobSuccess:
		return "[  OK  ]"
	case sched.JobFailure:
		return "[ Fail ]"
	case sched.JobTimeout:
		return "[ Time ]"
	case sched.JobCancelled:
		return "[Cancel]"
	default:
		return "[  ??  ]"
	}
}

// gerund names the present-progressive form of op, used to build the
// "Failed starting"/"Timed out starting"/"Cancelled starting" phrases.
func gerund(op sched.JobOp) string {
	switch op {
	case sched.OpStop:
		return "stopping"
	case sched.OpReload, sched.OpTryReload, sched.OpReloadOrStart:
		return "reloading"
	case sched.OpVerify:
		return "verifying"
	default:
		return "starting"
	}
}

// pastTense names the success phrasing ("Started", "Stopped", ...).
func pastTense(op sched.JobOp) string {
	switch op {
	case sched.OpStop:
		return "Stopped"
	case sched.OpReload, sched.OpTryReload, sched.OpReloadOrStart:
		return "Reloaded"
	case sched.OpVerify:
		return "Verified"
	default:
		return "Started"
	}
}

// verbPhrase builds the left column ("<Verb> <unit>"'s verb half) for a
// completion, e.g. "Started", or "Failed starting" on failure.
func verbPhrase(op sched.JobOp, state sched.JobState) string {
	if state == sched.JobSuccess {
		return pastTense(op)
	}
	prefix := "Failed"
	switch state {
	case sched.JobTimeout:
		prefix = "Timed out"
	case sched.JobCancelled:
		prefix = "Cancelled"
	}
	return prefix + " " + gerund(op)
}

// logLine emits the single-line completion message in the style of the
// original daemon's console status lines.
func (s *Scheduler) logLine(job *sched.Job, state sched.JobState) {
	line := fmt.Sprintf("%-60s %s", verbPhrase(job.Op, state)+" "+string(job.Unit.Principal()), bracketFor(state))
	args := []any{"job", job.ID, "unit", job.Unit.Principal(), "op", job.Op, "state", state}
	if state == sched.JobSuccess {
		s.logger.Info(line, args...)
		return
	}
	s.logger.Warn(line, args...)
}
