// Package l4kinematics derives displacement and instantaneous velocity
// series from a trajectory and an aligned timestamp series.
//
// This stage is strictly sequential: every derived value at index i depends
// on trajectory and timestamp values at i and i+1. All series are produced
// in full or not at all; any failure carries the offending sample index and
// aborts the computation. Velocities are in pixels per timestamp unit; the
// core performs no physical-unit calibration.
package l4kinematics
