package adminapi

import "github.com/InitWare/Neo-InitWare/pkg/sched"

// opByPath maps the admin API's URL segment for POST /units/{id}/{op} to
// the JobOp it requests.
var opByPath = map[string]sched.JobOp{
	"start":            sched.OpStart,
	"verify":           sched.OpVerify,
	"stop":             sched.OpStop,
	"reload":           sched.OpReload,
	"restart":          sched.OpRestart,
	"try-start":        sched.OpTryStart,
	"try-restart":      sched.OpTryRestart,
	"try-reload":       sched.OpTryReload,
	"reload-or-start":  sched.OpReloadOrStart,
	"restart-or-start": sched.OpRestartOrStart,
}
