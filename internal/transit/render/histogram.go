package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramConfig controls velocity histogram rendering.
type HistogramConfig struct {
	// Bins is the number of histogram bins. Defaults to 16 when zero.
	Bins int

	// Title is the plot title, e.g. "Instantaneous velocity, x-coordinates".
	Title string

	// XLabel labels the value axis. Defaults to "velocity (px per timestamp unit)".
	XLabel string
}

// WriteVelocityHistogramPNG renders a velocity series as a histogram PNG.
func WriteVelocityHistogramPNG(w io.Writer, velocities []float64, cfg HistogramConfig) error {
	if len(velocities) == 0 {
		return fmt.Errorf("no velocity samples to plot")
	}
	bins := cfg.Bins
	if bins == 0 {
		bins = 16
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = "velocity (px per timestamp unit)"
	}
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(velocities), bins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	p.Add(h)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render histogram: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write histogram: %w", err)
	}
	return nil
}

// BinSeries buckets a series into equal-width bins over [min, max] and
// returns the bin labels (centre values) and counts. Used by the monitor's
// ECharts histogram endpoints, which draw bars client-side instead of
// rasterising a PNG.
func BinSeries(values []float64, bins int) (labels []string, counts []int) {
	if len(values) == 0 || bins < 1 {
		return nil, nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	counts = make([]int, bins)
	width := (max - min) / float64(bins)
	if width == 0 {
		// All samples identical: single populated bin.
		labels = []string{fmt.Sprintf("%.4g", min)}
		counts = []int{len(values)}
		return labels, counts
	}
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // max value lands in the last bin
		}
		counts[idx]++
	}
	labels = make([]string, bins)
	for i := 0; i < bins; i++ {
		centre := min + width*(float64(i)+0.5)
		labels[i] = fmt.Sprintf("%.4g", centre)
	}
	return labels, counts
}
