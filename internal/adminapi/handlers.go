package adminapi

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

type healthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Started   string `json:"started"`
	Uptime    string `json:"uptime"`
	Audit     string `json:"audit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFromContext(r.Context())
	auditStatus := "disabled"
	if s.auditor != nil {
		auditStatus = "enabled"
	}
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		GoVersion: runtime.Version(),
		Started:   humanize.Time(s.startTime),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Audit:     auditStatus,
	})
}

type edgeView struct {
	To       string `json:"to"`
	Relation string `json:"relation"`
}

type unitView struct {
	Principal string     `json:"principal"`
	Aliases   []string   `json:"aliases"`
	Type      string     `json:"type"`
	State     string     `json:"state"`
	OutEdges  []edgeView `json:"out_edges"`
}

func viewUnit(u *sched.Unit) unitView {
	aliases := make([]string, len(u.Aliases))
	for i, a := range u.Aliases {
		aliases[i] = string(a)
	}
	edges := make([]edgeView, len(u.OutEdges))
	for i, e := range u.OutEdges {
		edges[i] = edgeView{To: string(e.To), Relation: e.Relation.String()}
	}
	return unitView{
		Principal: string(u.Principal()),
		Aliases:   aliases,
		Type:      u.Type,
		State:     u.State.String(),
		OutEdges:  edges,
	}
}

// handleListUnits sorts by principal alias using a locale-stable collator
// rather than a byte-wise string sort, mirroring the reference engine's use
// of golang.org/x/text for text-processing paths.
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFromContext(r.Context())

	var units []*sched.Unit
	s.runOnLoop(func() { units = s.graph.Units() })

	views := make([]unitView, len(units))
	for i, u := range units {
		views[i] = viewUnit(u)
	}
	c := collate.New(language.English)
	sort.Slice(views, func(i, j int) bool {
		return c.CompareString(views[i].Principal, views[j].Principal) < 0
	})

	respondOK(w, reqID, views)
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFromContext(r.Context())
	id := sched.UnitID(chi.URLParam(r, "id"))

	var u *sched.Unit
	s.runOnLoop(func() { u = s.graph.Find(id) })
	if u == nil {
		respondError(w, reqID, http.StatusNotFound, &APIError{Code: "NOT_FOUND", Message: fmt.Sprintf("unit %q not found", id)})
		return
	}
	respondOK(w, reqID, viewUnit(u))
}

func (s *Server) handleUnitOp(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFromContext(r.Context())
	id := sched.UnitID(chi.URLParam(r, "id"))
	opParam := chi.URLParam(r, "op")

	op, ok := opByPath[opParam]
	if !ok {
		respondError(w, reqID, http.StatusBadRequest, &APIError{Code: "VALIDATION_ERROR", Message: fmt.Sprintf("unknown operation %q", opParam)})
		return
	}

	var tx *sched.Transaction
	var err error
	s.runOnLoop(func() { tx, err = s.scheduler.Enqueue(id, op) })
	if err != nil {
		respondError(w, reqID, http.StatusConflict, &APIError{Code: "SCHEDULING_ERROR", Message: err.Error()})
		return
	}
	respondCreated(w, reqID, viewTransaction(tx))
}

type jobView struct {
	ID            int64  `json:"id"`
	CorrelationID string `json:"correlation_id"`
	Unit          string `json:"unit"`
	Op            string `json:"op"`
	State         string `json:"state"`
}

type transactionView struct {
	ID        string    `json:"id"`
	Objective *jobView  `json:"objective,omitempty"`
	Jobs      []jobView `json:"jobs"`
}

func viewTransaction(tx *sched.Transaction) transactionView {
	jobs := tx.AllJobs()
	views := make([]jobView, len(jobs))
	for i, j := range jobs {
		views[i] = viewJob(j)
	}
	tv := transactionView{ID: tx.ID, Jobs: views}
	if tx.Objective != nil {
		jv := viewJob(tx.Objective)
		tv.Objective = &jv
	}
	return tv
}

func viewJob(j *sched.Job) jobView {
	return jobView{
		ID:            int64(j.ID),
		CorrelationID: j.CorrelationID,
		Unit:          string(j.Unit.Principal()),
		Op:            j.Op.String(),
		State:         j.State.String(),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	reqID := requestIDFromContext(r.Context())

	var queue []*sched.Transaction
	s.runOnLoop(func() { queue = s.scheduler.Queue() })

	views := make([]transactionView, len(queue))
	for i, tx := range queue {
		views[i] = viewTransaction(tx)
	}
	respondOK(w, reqID, views)
}
