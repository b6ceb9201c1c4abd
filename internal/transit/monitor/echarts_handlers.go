package monitor

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/microflow.report/internal/httputil"
	"github.com/banshee-data/microflow.report/internal/transit/render"
)

// handleVelocityHistogramChart renders a bar-chart histogram (HTML) of one
// velocity series using go-echarts. This is a debugging-only endpoint to
// eyeball velocity distributions without exporting PNGs.
// Query params:
//   - run_id (optional; defaults to the newest run)
//   - axis (optional; "x" or "y", default "x")
//   - bins (optional; default 16, capped at 256)
func (ws *WebServer) handleVelocityHistogramChart(w http.ResponseWriter, r *http.Request) {
	runID, err := ws.resolveRunID(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.NotFound(w, "no runs stored")
			return
		}
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	axis := r.URL.Query().Get("axis")
	if axis != "y" {
		axis = "x"
	}
	bins := 16
	if b := r.URL.Query().Get("bins"); b != "" {
		if v, err := strconv.Atoi(b); err == nil && v >= 1 && v <= 256 {
			bins = v
		}
	}

	xVel, yVel, err := ws.store.GetVelocities(runID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	series := xVel
	if axis == "y" {
		series = yVel
	}
	if len(series) == 0 {
		httputil.NotFound(w, "no velocity samples for run")
		return
	}

	labels, counts := render.BinSeries(series, bins)
	data := make([]opts.BarData, 0, len(counts))
	for _, c := range counts {
		data = append(data, opts.BarData{Value: c})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Velocity Histogram", Width: "100%", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Instantaneous velocity, %s-coordinates", axis),
			Subtitle: fmt.Sprintf("run=%s samples=%d bins=%d (px per timestamp unit)", runID, len(series), bins),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries("count", data)

	page := components.NewPage()
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTrajectoryChart renders the centroid path for a run as a scatter
// plot in pixel coordinates, coloured by frame index.
func (ws *WebServer) handleTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	runID, err := ws.resolveRunID(r)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.NotFound(w, "no runs stored")
			return
		}
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	x, y, err := ws.store.GetTrajectory(runID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(x) == 0 {
		httputil.NotFound(w, "no trajectory points for run")
		return
	}

	data := make([]opts.ScatterData, 0, len(x))
	for i := range x {
		data = append(data, opts.ScatterData{Value: []interface{}{x[i], y[i], i}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Centroid Trajectory", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Centroid trajectory",
			Subtitle: fmt.Sprintf("run=%s frames=%d", runID, len(x)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x (px)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y (px)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(x) - 1),
			Dimension:  "2",
		}),
	)
	scatter.AddSeries("centroids", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head><title>Transit Debug</title></head>
<body style="margin:0;background:#111;color:#eee;font-family:sans-serif">
<h2 style="padding:8px">Transit debug%s</h2>
<div style="display:flex;flex-wrap:wrap">
  <iframe src="/debug/transit/velocity-histogram%s" style="width:49%%;height:760px;border:0"></iframe>
  <iframe src="/debug/transit/velocity-histogram%s" style="width:49%%;height:760px;border:0"></iframe>
  <iframe src="/debug/transit/trajectory%s" style="width:98%%;height:940px;border:0"></iframe>
</div>
</body>
</html>`

// handleDashboard renders a simple dashboard with iframes to the debug charts.
func (ws *WebServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	title := ""
	qs := ""
	if runID != "" {
		title = " — run " + html.EscapeString(runID)
		qs = "?run_id=" + url.QueryEscape(runID)
	}
	xq := qs
	yq := qs + "&axis=y"
	if qs == "" {
		yq = "?axis=y"
	}

	doc := fmt.Sprintf(dashboardHTML, title, html.EscapeString(xq), html.EscapeString(yq), html.EscapeString(qs))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}
