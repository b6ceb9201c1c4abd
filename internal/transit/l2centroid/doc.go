// Package l2centroid computes per-frame weighted centroids.
//
// The intensity matrix is projected onto each axis by summing along the
// orthogonal axis, and the centroid coordinate is the weighted mean pixel
// index of the resulting mass profile. A frame with zero total intensity on
// either axis fails with EmptyMassError rather than producing NaN.
package l2centroid
