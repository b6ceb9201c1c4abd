// Package monitor exposes debug HTTP endpoints for inspecting stored
// analysis runs: a JSON results API plus ECharts visualisations of the
// velocity histograms and the centroid trajectory.
package monitor
