// internal/stub/stub.go
//
// A local stand-in for the remote compute services so twinboard can run
// without the real process-mining backend. It serves the seeded
// purchase-to-pay topology, scores assignments with the same efficiency
// formula the production evaluator started from, and answers chat with a
// canned single-request responder.

package stub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tbecker/twinboard/internal/client"
	"github.com/tbecker/twinboard/internal/roster"
	"github.com/tbecker/twinboard/internal/simulate"
)

// bottleneckFloorDays is the residual duration below which a location no
// longer counts as a bottleneck.
const bottleneckFloorDays = 20

// Server implements every contract the engine consumes.
type Server struct {
	log      *slog.Logger
	mu       sync.Mutex
	training bool

	trainingSteps    int
	trainingInterval time.Duration
}

// New creates a stub server.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:              log,
		trainingSteps:    20,
		trainingInterval: 400 * time.Millisecond,
	}
}

// Topology returns the seeded process locations: the five assignable
// activities of the mined purchase-to-pay flow, Clear Invoice flagged as
// the bottleneck.
func Topology() []client.ProcessLocation {
	return []client.ProcessLocation{
		{ID: "approve-req", Label: "Approve Requisition", AvgDurationDays: 2.4},
		{ID: "create-po", Label: "Create PO", AvgDurationDays: 1.8},
		{ID: "receive-goods", Label: "Receive Goods", AvgDurationDays: 5.2},
		{ID: "scan-invoice", Label: "Scan Invoice", AvgDurationDays: 3.1},
		{ID: "clear-invoice", Label: "Clear Invoice", IsBottleneck: true, AvgDurationDays: 43.7},
	}
}

// Router wires the HTTP and websocket endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Get("/api/topology", s.handleTopology)
	r.Post("/api/suggest", s.handleSuggest)
	r.Post("/api/assignments", s.handleAssignments)
	r.Post("/api/optimize", s.handleOptimize)
	r.Get("/ws/chat", s.handleChat)
	r.Get("/ws/training", s.handleTraining)
	return r
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{"locations": Topology()})
}

type suggestRequest struct {
	LocationID      string          `json:"locationId"`
	Label           string          `json:"label"`
	AssignedWorkers []roster.Worker `json:"assignedWorkers"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.AssignedWorkers) == 0 {
		http.Error(w, "assignedWorkers must not be empty", http.StatusBadRequest)
		return
	}
	result := Evaluate(req.LocationID, req.AssignedWorkers)
	s.log.Info("suggestion served",
		"location", req.LocationID,
		"workers", len(req.AssignedWorkers),
		"impact", result.ImpactScore,
	)
	s.writeJSON(w, client.Suggestion{Result: result, Advice: advice(req.Label, result)})
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssignedWorkers []roster.Worker `json:"assignedWorkers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.log.Info("assignments synced", "workers", len(req.AssignedWorkers))
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	already := s.training
	s.training = true
	s.mu.Unlock()
	status := "started"
	if already {
		status = "already_training"
	}
	s.log.Info("optimization trigger", "status", status)
	s.writeJSON(w, map[string]string{"status": status})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", "error", err)
	}
}

// Evaluate scores one location's assignment. The shape follows the
// original evaluator: total efficiency scaled by a role bonus (approvers
// weigh more than analysts), capped so a single stacked location cannot
// promise the moon.
func Evaluate(locationID string, workers []roster.Worker) simulate.Result {
	totalEff := 0.0
	roleBonus := 0.0
	for _, w := range workers {
		totalEff += float64(w.Efficiency)
		switch {
		case containsFold(w.Role, "approver"):
			roleBonus += 1.5
		case containsFold(w.Role, "analyst"):
			roleBonus += 1.2
		}
	}
	impact := totalEff * (1 + roleBonus) / 1000.0

	before := 5.0
	bottleneck := false
	for _, loc := range Topology() {
		if loc.ID == locationID {
			before = loc.AvgDurationDays
			bottleneck = loc.IsBottleneck
			break
		}
	}

	reduction := min(55, impact*100)
	after := before * (1 - reduction/100)
	return simulate.Result{
		CycleTimeBefore:   round1(before),
		CycleTimeAfter:    round1(after),
		CycleReductionPct: round1(reduction),
		ThroughputGainPct: round1(min(100, impact*120)),
		OpexIncrease:      round1(2.5 * float64(len(workers))),
		IsBottleneck:      bottleneck && after > bottleneckFloorDays,
		ImpactScore:       round1(min(100, impact*100)),
	}
}

func advice(label string, r simulate.Result) string {
	if r.IsBottleneck {
		return label + " stays a bottleneck at this staffing level; consider adding an approver."
	}
	return "This assignment relieves " + label + "; projected cycle time drops to " +
		formatDays(r.CycleTimeAfter) + "."
}
