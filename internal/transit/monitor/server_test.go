package monitor

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/microflow.report/internal/db"
	"github.com/banshee-data/microflow.report/internal/testutil"
	"github.com/banshee-data/microflow.report/internal/transit/l3trajectory"
	"github.com/banshee-data/microflow.report/internal/transit/l4kinematics"
	"github.com/banshee-data/microflow.report/internal/transit/pipeline"
)

func newTestServer(t *testing.T) (*http.ServeMux, *db.DB) {
	t.Helper()
	store, err := db.NewDB(filepath.Join(t.TempDir(), "transit.db"))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewWebServer(store).RegisterRoutes(mux)
	return mux, store
}

func persistSampleRun(t *testing.T, store *db.DB, runID string, startedAt time.Time) {
	t.Helper()
	res := &pipeline.Result{
		RunID:      runID,
		FrameCount: 3,
		Rows:       4,
		Cols:       4,
		Trajectory: &l3trajectory.Trajectory{
			X: []float64{1, 1, 2},
			Y: []float64{1, 2, 2},
		},
		Rounded: &l3trajectory.RoundedTrajectory{
			XIdx: []int{1, 1, 2},
			YIdx: []int{1, 2, 2},
		},
		Kinematics: &l4kinematics.Result{
			XDisplacement: []float64{0, 1},
			YDisplacement: []float64{1, 0},
			Steps:         []float64{0.5, 0.5},
			XVelocity:     []float64{0, 2},
			YVelocity:     []float64{2, 0},
		},
		XStats:    l4kinematics.Summarise([]float64{0, 2}),
		YStats:    l4kinematics.Summarise([]float64{2, 0}),
		StartedAt: startedAt,
		Duration:  10 * time.Millisecond,
	}
	testutil.AssertNoError(t, store.PersistRun(res))
}

func TestListRunsEndpoint(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))
	persistSampleRun(t, store, "run-2", time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC))

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/transit/runs"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var runs []db.RunRecord
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(&runs))
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "run-2" {
		t.Errorf("first run = %s, want newest run-2", runs[0].RunID)
	}
}

func TestListRunsEmptyStore(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/transit/runs"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	// Empty store yields an empty JSON array, not null.
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestListRunsMethodNotAllowed(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodPost, "/api/transit/runs"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestGetRunEndpoint(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/transit/run?run_id=run-1"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var run db.RunRecord
	testutil.AssertNoError(t, json.NewDecoder(rec.Body).Decode(&run))
	if run.RunID != "run-1" || run.FrameCount != 3 {
		t.Errorf("run = %+v, want run-1 with 3 frames", run)
	}
}

func TestGetRunRequiresID(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/transit/run"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
}

func TestGetRunNotFound(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/transit/run?run_id=missing"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestVelocityHistogramChart(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	for _, path := range []string{
		"/debug/transit/velocity-histogram",
		"/debug/transit/velocity-histogram?run_id=run-1&axis=y&bins=4",
	} {
		rec := testutil.NewTestRecorder()
		mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, path))
		testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: Content-Type = %q, want text/html", path, ct)
		}
		if !strings.Contains(rec.Body.String(), "echarts") {
			t.Errorf("%s: response does not embed an echarts chart", path)
		}
	}
}

func TestVelocityHistogramNoRuns(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/transit/velocity-histogram"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestTrajectoryChart(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/transit/trajectory?run_id=run-1"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "echarts") {
		t.Error("response does not embed an echarts chart")
	}
}

func TestTrajectoryChartNoPoints(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/transit/trajectory?run_id=other"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestDashboard(t *testing.T) {
	mux, store := newTestServer(t)
	persistSampleRun(t, store, "run-1", time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/transit?run_id=run-1"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "/debug/transit/velocity-histogram") ||
		!strings.Contains(body, "/debug/transit/trajectory") {
		t.Error("dashboard does not link the chart endpoints")
	}
}

func TestDashboardEscapesRunID(t *testing.T) {
	mux, _ := newTestServer(t)
	rec := testutil.NewTestRecorder()
	mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/transit?run_id=%3Cscript%3E"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Error("run_id is not escaped in the dashboard")
	}
}
