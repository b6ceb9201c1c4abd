package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/banshee-data/microflow.report/internal/transit/l1stack"
	"github.com/banshee-data/microflow.report/internal/transit/l3trajectory"
)

// MarkerColor is the colour drawn at the centroid pixel in overlay frames.
var MarkerColor = color.RGBA{R: 255, A: 255}

// OverlayConfig controls GIF rendering.
type OverlayConfig struct {
	// DelayMs is the per-frame delay in milliseconds. Defaults to 50
	// (20 fps) when zero.
	DelayMs int

	// MarkerRadius extends the centroid marker into a small cross of this
	// many pixels per arm. Zero draws a single pixel.
	MarkerRadius int
}

// OverlayFrame converts one grayscale frame to RGBA and draws the centroid
// marker at the given pixel indices. The source frame is not modified.
// Marker indices must be in bounds; RoundedTrajectory guarantees this by
// clamping after rounding.
func OverlayFrame(f l1stack.Frame, xIdx, yIdx, markerRadius int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Cols, f.Rows))

	// Scale intensities into 8-bit range against the frame maximum so dim
	// background-subtracted stacks remain visible.
	maxV := 0.0
	for _, v := range f.Pix {
		if v > maxV {
			maxV = v
		}
	}
	scale := 0.0
	if maxV > 0 {
		scale = 255.0 / maxV
	}
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			g := uint8(f.At(r, c) * scale)
			img.SetRGBA(c, r, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}

	img.SetRGBA(xIdx, yIdx, MarkerColor)
	for d := 1; d <= markerRadius; d++ {
		for _, p := range [][2]int{{xIdx - d, yIdx}, {xIdx + d, yIdx}, {xIdx, yIdx - d}, {xIdx, yIdx + d}} {
			if p[0] >= 0 && p[0] < f.Cols && p[1] >= 0 && p[1] < f.Rows {
				img.SetRGBA(p[0], p[1], MarkerColor)
			}
		}
	}
	return img
}

// WriteOverlayGIF renders the stack as a looping animated GIF with the
// rounded centroid drawn on every frame.
func WriteOverlayGIF(w io.Writer, frames []l1stack.Frame, rt *l3trajectory.RoundedTrajectory, cfg OverlayConfig) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to render")
	}
	if len(rt.XIdx) != len(frames) || len(rt.YIdx) != len(frames) {
		return fmt.Errorf("rounded trajectory length %d does not match frame count %d", len(rt.XIdx), len(frames))
	}

	delay := cfg.DelayMs
	if delay == 0 {
		delay = 50
	}

	anim := &gif.GIF{LoopCount: 0}
	for i, f := range frames {
		rgba := OverlayFrame(f, rt.XIdx[i], rt.YIdx[i], cfg.MarkerRadius)

		// Grayscale ramp plus the marker colour keeps quantisation
		// near-exact for grayscale stacks instead of relying on a generic
		// palette. 255 gray levels + marker stays within the GIF limit of
		// 256 palette entries.
		pal := make(color.Palette, 0, 256)
		for v := 0; v < 255; v++ {
			pal = append(pal, color.RGBA{R: uint8(v), G: uint8(v), B: uint8(v), A: 255})
		}
		pal = append(pal, MarkerColor)

		paletted := image.NewPaletted(rgba.Bounds(), pal)
		xdraw.Draw(paletted, paletted.Bounds(), rgba, image.Point{}, xdraw.Src)

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay/10) // gif delay is in 10ms units
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
