package l2centroid

import (
	"fmt"

	"github.com/banshee-data/microflow.report/internal/transit/l1stack"
)

// Axis names the image axis a mass profile belongs to.
type Axis string

const (
	AxisX Axis = "x" // columns
	AxisY Axis = "y" // rows
)

// Centroid is the weighted mean pixel position of a frame's intensity mass.
// Coordinates are continuous: column index for X, row index for Y.
type Centroid struct {
	X float64
	Y float64
}

// EmptyMassError reports a frame whose total intensity is zero along an
// axis, making the weighted mean undefined.
type EmptyMassError struct {
	Frame int
	Axis  Axis
}

func (e *EmptyMassError) Error() string {
	return fmt.Sprintf("frame %d: zero total intensity on %s axis, centroid undefined", e.Frame, e.Axis)
}

// Extract computes the weighted centroid of one frame.
//
// Mass profiles: mx[j] sums column j over all rows (length Cols), my[i]
// sums row i over all columns (length Rows). The centroid coordinate on
// each axis is sum(m[i]*i)/sum(m[i]), which is guaranteed to lie within
// [0, axisLen-1] whenever the total mass is positive.
//
// Extract is pure: it depends only on the frame passed in and keeps no
// state between calls.
func Extract(f l1stack.Frame) (Centroid, error) {
	mx := make([]float64, f.Cols)
	my := make([]float64, f.Rows)
	for r := 0; r < f.Rows; r++ {
		off := r * f.Cols
		for c := 0; c < f.Cols; c++ {
			v := f.Pix[off+c]
			mx[c] += v
			my[r] += v
		}
	}

	x, err := weightedMeanIndex(mx)
	if err != nil {
		return Centroid{}, &EmptyMassError{Frame: f.Index, Axis: AxisX}
	}
	y, err := weightedMeanIndex(my)
	if err != nil {
		return Centroid{}, &EmptyMassError{Frame: f.Index, Axis: AxisY}
	}
	return Centroid{X: x, Y: y}, nil
}

var errZeroMass = fmt.Errorf("zero mass")

// weightedMeanIndex returns sum(m[i]*i)/sum(m[i]) for a mass profile.
func weightedMeanIndex(mass []float64) (float64, error) {
	var total, weighted float64
	for i, m := range mass {
		total += m
		weighted += m * float64(i)
	}
	if total == 0 {
		return 0, errZeroMass
	}
	return weighted / total, nil
}
