package l1stack

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	// Registered for image.Decode so per-frame TIFF and PNG exports both work.
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// FileSource is an ImageSource backed by one image file per frame. Andor
// acquisitions are exported as a numbered sequence of background-subtracted
// grayscale TIFFs; frames are ordered by sorted filename.
type FileSource struct {
	paths []string
}

// NewFileSource builds a FileSource from an explicit, ordered list of paths.
func NewFileSource(paths []string) *FileSource {
	return &FileSource{paths: paths}
}

// NewGlobSource builds a FileSource from a glob pattern (e.g.
// "run-42/frame-*.tif"). Matches are sorted lexically, which preserves
// acquisition order for zero-padded frame numbering.
func NewGlobSource(pattern string) (*FileSource, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames match %q", pattern)
	}
	sort.Strings(paths)
	return &FileSource{paths: paths}, nil
}

// Frames decodes every file into a grayscale Frame. Decoding stops at the
// first unreadable file so a truncated export cannot silently desynchronise
// the stack from its timestamp series.
func (s *FileSource) Frames() ([]Frame, error) {
	frames := make([]Frame, 0, len(s.paths))
	for i, path := range s.paths {
		f, err := decodeFrame(i, path)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func decodeFrame(index int, path string) (Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: %w", index, err)
	}
	defer fh.Close()

	img, _, err := image.Decode(fh)
	if err != nil {
		return Frame{}, fmt.Errorf("frame %d: decode %s: %w", index, path, err)
	}
	return FrameFromImage(index, img)
}

// FrameFromImage converts a decoded image into a Frame of float64
// intensities. 16-bit grayscale keeps its full range; everything else is
// reduced through the Gray16 colour model.
func FrameFromImage(index int, img image.Image) (Frame, error) {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	pix := make([]float64, 0, rows*cols)

	switch src := img.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := (y - b.Min.Y) * src.Stride
			for x := 0; x < cols; x++ {
				pix = append(pix, float64(src.Pix[off+x]))
			}
		}
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pix = append(pix, float64(src.Gray16At(x, y).Y))
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				pix = append(pix, float64(g.Y))
			}
		}
	}
	return NewFrame(index, rows, cols, pix)
}
