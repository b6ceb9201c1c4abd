// Package pipeline provides the transit analysis pipeline that orchestrates
// processing stages from L1 Stack through L4 Kinematics.
//
// This package is the composition root: it imports from layer packages
// (l1stack, l2centroid, l3trajectory, l4kinematics) and wires in the
// persistence sink, but none of those packages import pipeline/.
package pipeline
