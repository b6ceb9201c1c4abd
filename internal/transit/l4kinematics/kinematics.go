package l4kinematics

import (
	"fmt"

	"github.com/banshee-data/microflow.report/internal/transit/l3trajectory"
)

// AlignmentError reports a timestamp series whose length does not match the
// frame count. Computation halts before any displacement or velocity is
// produced.
type AlignmentError struct {
	Frames     int
	Timestamps int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("timestamp count %d does not match frame count %d", e.Timestamps, e.Frames)
}

// ZeroTimestepError reports duplicate consecutive timestamps. Dividing a
// displacement by a zero step would silently emit infinity, so the first
// zero interval fails instead.
type ZeroTimestepError struct {
	Index int // interval index: timestamps[Index] == timestamps[Index+1]
}

func (e *ZeroTimestepError) Error() string {
	return fmt.Sprintf("zero time step at interval %d: duplicate consecutive timestamps", e.Index)
}

// Result holds the derived kinematic series. All four series have length
// frameCount-1 (zero for a single-frame trajectory) and are immutable once
// computed.
type Result struct {
	XDisplacement []float64
	YDisplacement []float64
	Steps         []float64
	XVelocity     []float64
	YVelocity     []float64
}

// Displacement produces d[i] = v[i+1] - v[i] for an ordered series. A
// series of length <= 1 yields an empty (non-nil) result, not an error.
func Displacement(v []float64) []float64 {
	if len(v) <= 1 {
		return []float64{}
	}
	d := make([]float64, len(v)-1)
	for i := 0; i < len(v)-1; i++ {
		d[i] = v[i+1] - v[i]
	}
	return d
}

// Steps produces the elapsed time between consecutive timestamps.
func Steps(timestamps []float64) []float64 {
	return Displacement(timestamps)
}

// Velocities divides displacements by time steps elementwise. Fails with
// ZeroTimestepError at the first zero step.
func Velocities(disp, steps []float64) ([]float64, error) {
	if len(disp) != len(steps) {
		return nil, fmt.Errorf("displacement count %d does not match step count %d", len(disp), len(steps))
	}
	vel := make([]float64, len(disp))
	for i := range disp {
		if steps[i] == 0 {
			return nil, &ZeroTimestepError{Index: i}
		}
		vel[i] = disp[i] / steps[i]
	}
	return vel, nil
}

// Compute derives the full kinematics result for a trajectory and its
// timestamp series. Alignment is checked up front: a mismatched timestamp
// count fails before anything is derived.
func Compute(traj *l3trajectory.Trajectory, timestamps []float64) (*Result, error) {
	n := traj.Len()
	if len(timestamps) != n {
		return nil, &AlignmentError{Frames: n, Timestamps: len(timestamps)}
	}

	res := &Result{
		XDisplacement: Displacement(traj.X),
		YDisplacement: Displacement(traj.Y),
		Steps:         Steps(timestamps),
	}

	var err error
	if res.XVelocity, err = Velocities(res.XDisplacement, res.Steps); err != nil {
		return nil, fmt.Errorf("x velocity: %w", err)
	}
	if res.YVelocity, err = Velocities(res.YDisplacement, res.Steps); err != nil {
		return nil, fmt.Errorf("y velocity: %w", err)
	}
	return res, nil
}
