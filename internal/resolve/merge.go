package resolve

import "github.com/InitWare/Neo-InitWare/pkg/sched"

// mergeRank totally orders the ten job operations by "strength": merging two
// ops yields whichever has the higher rank, which reproduces every named
// cell of the merge matrix (Start absorbs Verify/Reload, Restart absorbs
// Start/Reload/Verify/TryRestart, ReloadOrStart absorbs Reload/Start,
// RestartOrStart is the top element) from a single total function rather
// than a hand-written cell-by-cell table.
var mergeRank = map[sched.JobOp]int{
	sched.OpVerify:         1,
	sched.OpTryReload:      2,
	sched.OpReload:         3,
	sched.OpTryStart:       4,
	sched.OpStart:          5,
	sched.OpTryRestart:     6,
	sched.OpReloadOrStart:  7,
	sched.OpRestart:        8,
	sched.OpRestartOrStart: 9,
}

// merge implements the total function merge(a, b) -> op | Invalid. Stop
// only merges with itself; every other Stop/non-Stop pairing is Invalid.
// All other pairings merge to the higher-ranked operation (identical ops
// trivially merge to themselves).
func merge(a, b sched.JobOp) (sched.JobOp, bool) {
	if a == b {
		return a, true
	}
	if a == sched.OpStop || b == sched.OpStop {
		return "", false
	}
	if mergeRank[a] >= mergeRank[b] {
		return a, true
	}
	return b, true
}
