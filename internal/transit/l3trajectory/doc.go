// Package l3trajectory aggregates per-frame centroids into an ordered
// trajectory.
//
// The builder visits frames strictly in index order (or extracts centroids
// concurrently and re-orders by frame index), producing parallel X and Y
// coordinate series whose length always equals the frame count. Extraction
// failures abort the whole build with the failing frame index attached;
// frames are never skipped, because a gap would desynchronise the
// trajectory from the timestamp series used by the kinematics stage.
package l3trajectory
