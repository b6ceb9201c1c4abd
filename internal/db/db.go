// Package db provides sqlite persistence for transit analysis runs.
//
// Each completed run is stored as one row in transit_runs plus per-frame
// trajectory points and per-interval velocity samples. The schema is
// managed by embedded migrations (see migrate.go).
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/microflow.report/internal/transit/pipeline"
)

// DB wraps the sqlite connection used by the analysis store.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the sqlite database at path and applies all
// pending migrations.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL keeps readers (the monitor API) from blocking writes from the
	// analysis pipeline; busy_timeout covers the brief overlap.
	if _, err := sqlDB.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RunRecord is the stored summary of one analysis run.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	FrameCount  int       `json:"frame_count"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	XMeanVel    float64   `json:"x_mean_velocity"`
	XStdDevVel  float64   `json:"x_std_dev_velocity"`
	YMeanVel    float64   `json:"y_mean_velocity"`
	YStdDevVel  float64   `json:"y_std_dev_velocity"`
	StartedAt   time.Time `json:"started_at"`
	DurationMs  int64     `json:"duration_ms"`
	SampleCount int       `json:"sample_count"`
}

// PersistRun writes a completed pipeline result: the run summary row, every
// trajectory point and every velocity sample, in a single transaction so a
// partial run can never be observed.
func (db *DB) PersistRun(res *pipeline.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO transit_runs (
			run_id, frame_count, frame_rows, frame_cols,
			x_mean_velocity, x_std_dev_velocity,
			y_mean_velocity, y_std_dev_velocity,
			started_at_unix_nanos, duration_ms, sample_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.FrameCount, res.Rows, res.Cols,
		res.XStats.Mean, res.XStats.StdDev,
		res.YStats.Mean, res.YStats.StdDev,
		res.StartedAt.UnixNano(), res.Duration.Milliseconds(),
		len(res.Kinematics.XVelocity),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	pointStmt, err := tx.Prepare(`
		INSERT INTO trajectory_points (run_id, frame_index, x, y, x_idx, y_idx)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trajectory insert: %w", err)
	}
	defer pointStmt.Close()
	for i := 0; i < res.Trajectory.Len(); i++ {
		if _, err := pointStmt.Exec(res.RunID, i,
			res.Trajectory.X[i], res.Trajectory.Y[i],
			res.Rounded.XIdx[i], res.Rounded.YIdx[i]); err != nil {
			return fmt.Errorf("insert trajectory point %d: %w", i, err)
		}
	}

	sampleStmt, err := tx.Prepare(`
		INSERT INTO velocity_samples (run_id, interval_index, time_step, x_displacement, y_displacement, x_velocity, y_velocity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare velocity insert: %w", err)
	}
	defer sampleStmt.Close()
	for i := range res.Kinematics.XVelocity {
		if _, err := sampleStmt.Exec(res.RunID, i,
			res.Kinematics.Steps[i],
			res.Kinematics.XDisplacement[i], res.Kinematics.YDisplacement[i],
			res.Kinematics.XVelocity[i], res.Kinematics.YVelocity[i]); err != nil {
			return fmt.Errorf("insert velocity sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", res.RunID, err)
	}
	return nil
}

// ListRuns returns stored run summaries, newest first.
func (db *DB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, frame_count, frame_rows, frame_cols,
		       x_mean_velocity, x_std_dev_velocity,
		       y_mean_velocity, y_std_dev_velocity,
		       started_at_unix_nanos, duration_ms, sample_count
		FROM transit_runs
		ORDER BY started_at_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var startedNanos int64
		if err := rows.Scan(&r.RunID, &r.FrameCount, &r.Rows, &r.Cols,
			&r.XMeanVel, &r.XStdDevVel, &r.YMeanVel, &r.YStdDevVel,
			&startedNanos, &r.DurationMs, &r.SampleCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedNanos)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetRun returns one stored run summary, or sql.ErrNoRows.
func (db *DB) GetRun(runID string) (*RunRecord, error) {
	var r RunRecord
	var startedNanos int64
	err := db.QueryRow(`
		SELECT run_id, frame_count, frame_rows, frame_cols,
		       x_mean_velocity, x_std_dev_velocity,
		       y_mean_velocity, y_std_dev_velocity,
		       started_at_unix_nanos, duration_ms, sample_count
		FROM transit_runs WHERE run_id = ?`, runID).
		Scan(&r.RunID, &r.FrameCount, &r.Rows, &r.Cols,
			&r.XMeanVel, &r.XStdDevVel, &r.YMeanVel, &r.YStdDevVel,
			&startedNanos, &r.DurationMs, &r.SampleCount)
	if err != nil {
		return nil, err
	}
	r.StartedAt = time.Unix(0, startedNanos)
	return &r, nil
}

// GetVelocities returns the stored x and y velocity series for a run,
// ordered by interval index.
func (db *DB) GetVelocities(runID string) (xVel, yVel []float64, err error) {
	rows, err := db.Query(`
		SELECT x_velocity, y_velocity FROM velocity_samples
		WHERE run_id = ? ORDER BY interval_index`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("query velocities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var x, y float64
		if err := rows.Scan(&x, &y); err != nil {
			return nil, nil, fmt.Errorf("scan velocity sample: %w", err)
		}
		xVel = append(xVel, x)
		yVel = append(yVel, y)
	}
	return xVel, yVel, rows.Err()
}

// GetTrajectory returns the stored trajectory for a run, ordered by frame
// index.
func (db *DB) GetTrajectory(runID string) (x, y []float64, err error) {
	rows, err := db.Query(`
		SELECT x, y FROM trajectory_points
		WHERE run_id = ? ORDER BY frame_index`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("query trajectory: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var px, py float64
		if err := rows.Scan(&px, &py); err != nil {
			return nil, nil, fmt.Errorf("scan trajectory point: %w", err)
		}
		x = append(x, px)
		y = append(y, py)
	}
	return x, y, rows.Err()
}
