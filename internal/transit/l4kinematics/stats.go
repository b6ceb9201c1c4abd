package l4kinematics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// VelocityStats summarises one velocity series for reporting and
// persistence. Values are in pixels per timestamp unit, same as the series.
type VelocityStats struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summarise computes summary statistics over a velocity series. An empty
// series yields the zero value; single-sample series report zero standard
// deviation.
func Summarise(vel []float64) VelocityStats {
	if len(vel) == 0 {
		return VelocityStats{}
	}
	s := VelocityStats{
		Samples: len(vel),
		Mean:    stat.Mean(vel, nil),
		Min:     floats.Min(vel),
		Max:     floats.Max(vel),
	}
	if len(vel) > 1 {
		s.StdDev = stat.StdDev(vel, nil)
	}
	return s
}
