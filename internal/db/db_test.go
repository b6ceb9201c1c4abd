package db

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/microflow.report/internal/transit/l3trajectory"
	"github.com/banshee-data/microflow.report/internal/transit/l4kinematics"
	"github.com/banshee-data/microflow.report/internal/transit/pipeline"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	store, err := NewDB(filepath.Join(t.TempDir(), "transit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(runID string) *pipeline.Result {
	return &pipeline.Result{
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
		StartedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
		Duration:  42 * time.Millisecond,
	}
}

func TestPersistAndGetRun(t *testing.T) {
	store := newTestDB(t)
	require.NoError(t, store.PersistRun(sampleResult("run-1")))

	rec, err := store.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, 3, rec.FrameCount)
	assert.Equal(t, 4, rec.Rows)
	assert.Equal(t, 4, rec.Cols)
	assert.Equal(t, 2, rec.SampleCount)
	assert.InDelta(t, 1.0, rec.XMeanVel, 1e-12)
	assert.InDelta(t, 1.0, rec.YMeanVel, 1e-12)
	assert.Equal(t, int64(42), rec.DurationMs)
	assert.True(t, rec.StartedAt.Equal(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)))
}

func TestGetRunNotFound(t *testing.T) {
	store := newTestDB(t)
	_, err := store.GetRun("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := newTestDB(t)

	older := sampleResult("run-old")
	older.StartedAt = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	newer := sampleResult("run-new")
	newer.StartedAt = time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC)
	require.NoError(t, store.PersistRun(older))
	require.NoError(t, store.PersistRun(newer))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-old", runs[1].RunID)
}

func TestListRunsLimit(t *testing.T) {
	store := newTestDB(t)
	for i, id := range []string{"a", "b", "c"} {
		res := sampleResult(id)
		res.StartedAt = time.Date(2026, 4, 1, 10+i, 0, 0, 0, time.UTC)
		require.NoError(t, store.PersistRun(res))
	}
	runs, err := store.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestGetVelocities(t *testing.T) {
	store := newTestDB(t)
	require.NoError(t, store.PersistRun(sampleResult("run-1")))

	xVel, yVel, err := store.GetVelocities("run-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, xVel)
	assert.Equal(t, []float64{2, 0}, yVel)
}

func TestGetTrajectory(t *testing.T) {
	store := newTestDB(t)
	require.NoError(t, store.PersistRun(sampleResult("run-1")))

	x, y, err := store.GetTrajectory("run-1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 2}, x)
	assert.Equal(t, []float64{1, 2, 2}, y)
}

func TestPersistRunDuplicateIDRollsBack(t *testing.T) {
	store := newTestDB(t)
	require.NoError(t, store.PersistRun(sampleResult("run-1")))

	// Second insert violates the primary key; nothing from the failed
	// transaction may be visible.
	err := store.PersistRun(sampleResult("run-1"))
	assert.Error(t, err)

	xVel, _, err := store.GetVelocities("run-1")
	require.NoError(t, err)
	assert.Len(t, xVel, 2)
}
