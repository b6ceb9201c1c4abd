package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/microflow.report/internal/monitoring"
	"github.com/banshee-data/microflow.report/internal/timeutil"
	"github.com/banshee-data/microflow.report/internal/transit/l1stack"
	"github.com/banshee-data/microflow.report/internal/transit/l3trajectory"
	"github.com/banshee-data/microflow.report/internal/transit/l4kinematics"
	"github.com/google/uuid"
)

// Request bundles the external collaborators for one analysis run. Frames
// and timestamps are materialised in memory before any processing starts;
// the pipeline itself performs no blocking I/O.
type Request struct {
	Source   l1stack.ImageSource
	Metadata l1stack.MetadataSource
}

// Result is the complete output of one analysis run. Every series obeys the
// alignment invariants: trajectory length equals frame count, displacement
// and velocity lengths equal frame count minus one.
type Result struct {
	RunID      string
	FrameCount int
	Rows       int
	Cols       int

	Trajectory *l3trajectory.Trajectory
	Rounded    *l3trajectory.RoundedTrajectory
	Kinematics *l4kinematics.Result
	XStats     l4kinematics.VelocityStats
	YStats     l4kinematics.VelocityStats

	StartedAt time.Time
	Duration  time.Duration
}

// PersistenceSink writes a completed run to storage. It is an adapter, not
// a domain layer, so implementations live outside the transit packages
// (e.g. internal/db).
type PersistenceSink interface {
	PersistRun(res *Result) error
}

// Config holds dependencies for the analysis pipeline.
type Config struct {
	// Workers is the number of concurrent centroid extraction workers.
	// Values below 2 run extraction sequentially. The kinematics stage is
	// always sequential regardless of this setting.
	Workers int

	// Clock provides run timing. Defaults to the real clock.
	Clock timeutil.Clock

	// Sink, when non-nil, receives the completed run. Persistence failures
	// are logged but do not fail the run: the result is already complete
	// and valid by the time the sink is invoked.
	Sink PersistenceSink
}

// Run executes the full analysis: load frames and timestamps, build the
// trajectory, derive kinematics, then persist. Any stage failure aborts the
// whole run; there is no partial result to return, since downstream
// consumers require full alignment between coordinate, displacement and
// velocity series.
func (cfg *Config) Run(ctx context.Context, req Request) (*Result, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()

	if req.Source == nil {
		return nil, fmt.Errorf("no image source configured")
	}
	if req.Metadata == nil {
		return nil, fmt.Errorf("no metadata source configured")
	}

	frames, err := req.Source.Frames()
	if err != nil {
		return nil, fmt.Errorf("load frames: %w", err)
	}
	timestamps, err := req.Metadata.Timestamps()
	if err != nil {
		return nil, fmt.Errorf("load timestamps: %w", err)
	}
	debugf("[Pipeline] Loaded %d frames, %d timestamps", len(frames), len(timestamps))

	// Check alignment before spending any work on extraction. The
	// kinematics stage re-checks this against the built trajectory.
	if len(timestamps) != len(frames) {
		return nil, &l4kinematics.AlignmentError{Frames: len(frames), Timestamps: len(timestamps)}
	}

	traj, err := l3trajectory.Build(ctx, frames, l3trajectory.BuildConfig{Workers: cfg.Workers})
	if err != nil {
		return nil, fmt.Errorf("build trajectory: %w", err)
	}
	debugf("[Pipeline] Trajectory built: %d centroids", traj.Len())

	kin, err := l4kinematics.Compute(traj, timestamps)
	if err != nil {
		return nil, fmt.Errorf("compute kinematics: %w", err)
	}

	res := &Result{
		RunID:      uuid.NewString(),
		FrameCount: len(frames),
		Trajectory: traj,
		Kinematics: kin,
		XStats:     l4kinematics.Summarise(kin.XVelocity),
		YStats:     l4kinematics.Summarise(kin.YVelocity),
		StartedAt:  start,
		Duration:   clock.Since(start),
	}
	if len(frames) > 0 {
		res.Rows = frames[0].Rows
		res.Cols = frames[0].Cols
		res.Rounded = l3trajectory.Round(traj, res.Rows, res.Cols)
	} else {
		res.Rounded = &l3trajectory.RoundedTrajectory{XIdx: []int{}, YIdx: []int{}}
	}

	monitoring.Logf("[Pipeline] Run %s complete: %d frames, %d velocity samples, took %v",
		res.RunID, res.FrameCount, len(kin.XVelocity), res.Duration)

	if cfg.Sink != nil {
		if err := cfg.Sink.PersistRun(res); err != nil {
			monitoring.Logf("[Pipeline] Failed to persist run %s: %v", res.RunID, err)
		}
	}
	return res, nil
}
