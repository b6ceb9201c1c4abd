package monitor

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/banshee-data/microflow.report/internal/db"
	"github.com/banshee-data/microflow.report/internal/httputil"
)

// WebServer serves the transit debug API backed by the run store.
type WebServer struct {
	store *db.DB
}

// NewWebServer creates a WebServer over the given store.
func NewWebServer(store *db.DB) *WebServer {
	return &WebServer{store: store}
}

// RegisterRoutes attaches all monitor endpoints to mux.
func (ws *WebServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/transit/runs", ws.handleListRuns)
	mux.HandleFunc("/api/transit/run", ws.handleGetRun)
	mux.HandleFunc("/debug/transit/velocity-histogram", ws.handleVelocityHistogramChart)
	mux.HandleFunc("/debug/transit/trajectory", ws.handleTrajectoryChart)
	mux.HandleFunc("/debug/transit", ws.handleDashboard)
}

// handleListRuns returns stored run summaries, newest first.
func (ws *WebServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := ws.store.ListRuns(50)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []db.RunRecord{}
	}
	httputil.WriteJSONOK(w, runs)
}

// handleGetRun returns one run summary by run_id.
func (ws *WebServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "run_id is required")
		return
	}
	run, err := ws.store.GetRun(runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.NotFound(w, "no such run")
			return
		}
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSONOK(w, run)
}

// resolveRunID returns the requested run_id, falling back to the newest
// stored run when the parameter is absent.
func (ws *WebServer) resolveRunID(r *http.Request) (string, error) {
	if runID := r.URL.Query().Get("run_id"); runID != "" {
		return runID, nil
	}
	runs, err := ws.store.ListRuns(1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", sql.ErrNoRows
	}
	return runs[0].RunID, nil
}
