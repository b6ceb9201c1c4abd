// Package render produces visual artefacts from completed analysis runs:
// an animated GIF of the frame stack with the centroid overlaid, and
// velocity histograms as PNG plots. It consumes only pipeline outputs
// (frames, RoundedTrajectory, velocity series) and never reaches back into
// the analysis stages.
package render
