package l3trajectory

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/banshee-data/microflow.report/internal/transit/l1stack"
	"github.com/banshee-data/microflow.report/internal/transit/l2centroid"
)

// Trajectory holds the per-frame centroid coordinate series. Both slices
// have length equal to the frame count. Built once, then immutable.
type Trajectory struct {
	X []float64
	Y []float64
}

// Len returns the number of frames in the trajectory.
func (t *Trajectory) Len() int {
	return len(t.X)
}

// RoundedTrajectory holds integer pixel indices derived from a Trajectory,
// clamped into frame bounds. Overlay renderers index images with these
// values directly, so every entry is guaranteed valid.
type RoundedTrajectory struct {
	XIdx []int
	YIdx []int
}

// BuildConfig controls trajectory construction.
type BuildConfig struct {
	// Workers is the number of concurrent centroid extraction workers.
	// Values below 2 select the sequential path. Extraction has no
	// cross-frame dependency, so results are computed in any order and
	// re-ordered by frame index before return.
	Workers int
}

// Build extracts the centroid of every frame and assembles the trajectory.
// Frame shapes are validated first; a mismatch fails with
// l1stack.ShapeMismatchError before any extraction runs. The returned
// trajectory preserves input frame order regardless of worker completion
// order. Cancelling ctx discards all work: there is no partial trajectory.
func Build(ctx context.Context, frames []l1stack.Frame, cfg BuildConfig) (*Trajectory, error) {
	if err := l1stack.ValidateShapes(frames); err != nil {
		return nil, err
	}

	// Preallocate to the known frame count so the length invariant holds
	// by construction.
	traj := &Trajectory{
		X: make([]float64, len(frames)),
		Y: make([]float64, len(frames)),
	}
	if len(frames) == 0 {
		return traj, nil
	}

	if cfg.Workers < 2 {
		return buildSequential(ctx, frames, traj)
	}
	return buildConcurrent(ctx, frames, traj, cfg.Workers)
}

func buildSequential(ctx context.Context, frames []l1stack.Frame, traj *Trajectory) (*Trajectory, error) {
	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := l2centroid.Extract(frames[i])
		if err != nil {
			return nil, fmt.Errorf("extract centroid for frame %d: %w", i, err)
		}
		traj.X[i] = c.X
		traj.Y[i] = c.Y
	}
	return traj, nil
}

func buildConcurrent(ctx context.Context, frames []l1stack.Frame, traj *Trajectory, workers int) (*Trajectory, error) {
	if workers > len(frames) {
		workers = len(frames)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type frameError struct {
		frame int
		err   error
	}

	indexCh := make(chan int)
	errCh := make(chan frameError, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				c, err := l2centroid.Extract(frames[i])
				if err != nil {
					select {
					case errCh <- frameError{frame: i, err: err}:
					default:
					}
					cancel()
					return
				}
				// Each worker writes a disjoint index, so no lock is
				// needed; order is restored by indexing, not collection.
				traj.X[i] = c.X
				traj.Y[i] = c.Y
			}
		}()
	}

	dispatched := 0
feed:
	for i := range frames {
		select {
		case indexCh <- i:
			dispatched++
		case <-ctx.Done():
			break feed
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	// Report the lowest failing frame index so the outcome is
	// deterministic regardless of worker completion order.
	var firstErr *frameError
	for fe := range errCh {
		fe := fe
		if firstErr == nil || fe.frame < firstErr.frame {
			firstErr = &fe
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("extract centroid for frame %d: %w", firstErr.frame, firstErr.err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dispatched != len(frames) {
		return nil, fmt.Errorf("trajectory build aborted after %d of %d frames", dispatched, len(frames))
	}
	return traj, nil
}

// Round derives the integer overlay trajectory: each coordinate is rounded
// half away from zero, then clamped into [0, dim-1]. Clamping runs after
// rounding so a centroid at 11.7 in a 12-pixel axis lands on index 11, not
// out of bounds.
func Round(t *Trajectory, rows, cols int) *RoundedTrajectory {
	rt := &RoundedTrajectory{
		XIdx: make([]int, t.Len()),
		YIdx: make([]int, t.Len()),
	}
	for i := 0; i < t.Len(); i++ {
		rt.XIdx[i] = clamp(int(math.Round(t.X[i])), cols-1)
		rt.YIdx[i] = clamp(int(math.Round(t.Y[i])), rows-1)
	}
	return rt
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
