package l1stack

import (
	"fmt"
)

// Frame is one grayscale image in a stack: Rows×Cols non-negative
// intensities stored row-major. Frames are immutable once built; the
// pipeline never writes to Pix after construction.
type Frame struct {
	Index int // position in the stack, 0-based
	Rows  int
	Cols  int
	Pix   []float64 // row-major, length Rows*Cols
}

// At returns the intensity at (row, col). No bounds checking beyond the
// slice access itself.
func (f *Frame) At(row, col int) float64 {
	return f.Pix[row*f.Cols+col]
}

// NewFrame builds a Frame from a row-major pixel slice.
func NewFrame(index, rows, cols int, pix []float64) (Frame, error) {
	if rows <= 0 || cols <= 0 {
		return Frame{}, fmt.Errorf("frame %d: invalid dimensions %dx%d", index, rows, cols)
	}
	if len(pix) != rows*cols {
		return Frame{}, fmt.Errorf("frame %d: pixel count %d does not match %dx%d", index, len(pix), rows, cols)
	}
	return Frame{Index: index, Rows: rows, Cols: cols, Pix: pix}, nil
}

// ImageSource supplies an ordered sequence of frames, fully materialised in
// memory before the pipeline starts.
type ImageSource interface {
	// Frames returns the stack in acquisition order. Every frame must share
	// the same dimensions; use ValidateShapes to enforce this.
	Frames() ([]Frame, error)
}

// MetadataSource supplies per-frame acquisition timestamps, one per frame,
// in seconds since the start of the acquisition.
type MetadataSource interface {
	Timestamps() ([]float64, error)
}

// ShapeMismatchError reports a frame whose dimensions differ from the first
// frame of the stack.
type ShapeMismatchError struct {
	Frame    int // index of the offending frame
	GotRows  int
	GotCols  int
	WantRows int
	WantCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("frame %d: shape %dx%d does not match stack shape %dx%d",
		e.Frame, e.GotRows, e.GotCols, e.WantRows, e.WantCols)
}

// ValidateShapes checks that every frame in the stack has the same
// dimensions as the first. Returns a ShapeMismatchError naming the first
// offending frame, or nil for an empty stack.
func ValidateShapes(frames []Frame) error {
	if len(frames) == 0 {
		return nil
	}
	rows, cols := frames[0].Rows, frames[0].Cols
	for i := range frames {
		if frames[i].Rows != rows || frames[i].Cols != cols {
			return &ShapeMismatchError{
				Frame:    i,
				GotRows:  frames[i].Rows,
				GotCols:  frames[i].Cols,
				WantRows: rows,
				WantCols: cols,
			}
		}
	}
	return nil
}

// MatrixSource is an in-memory ImageSource built from 2D matrices. Used by
// tests and by callers that already hold decoded pixel data.
type MatrixSource struct {
	frames []Frame
}

// NewMatrixSource builds a MatrixSource from a slice of 2D matrices. Each
// matrix must be rectangular; shape consistency across frames is checked
// lazily by the trajectory builder, not here.
func NewMatrixSource(matrices [][][]float64) (*MatrixSource, error) {
	frames := make([]Frame, 0, len(matrices))
	for i, m := range matrices {
		if len(m) == 0 || len(m[0]) == 0 {
			return nil, fmt.Errorf("frame %d: empty matrix", i)
		}
		rows, cols := len(m), len(m[0])
		pix := make([]float64, 0, rows*cols)
		for r, row := range m {
			if len(row) != cols {
				return nil, fmt.Errorf("frame %d: ragged matrix, row %d has %d columns, want %d", i, r, len(row), cols)
			}
			pix = append(pix, row...)
		}
		f, err := NewFrame(i, rows, cols, pix)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return &MatrixSource{frames: frames}, nil
}

// Frames returns the in-memory stack.
func (s *MatrixSource) Frames() ([]Frame, error) {
	return s.frames, nil
}

// SliceTimestamps is an in-memory MetadataSource over a timestamp slice.
type SliceTimestamps []float64

// Timestamps returns the slice as-is.
func (s SliceTimestamps) Timestamps() ([]float64, error) {
	return []float64(s), nil
}
