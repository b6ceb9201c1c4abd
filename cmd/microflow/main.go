// Command microflow runs the transit analysis pipeline over an exported
// frame stack: per-frame weighted centroids, trajectory assembly and
// displacement/velocity derivation, with results persisted to sqlite and
// optional GIF/histogram artefacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/microflow.report/internal/config"
	"github.com/banshee-data/microflow.report/internal/db"
	"github.com/banshee-data/microflow.report/internal/security"
	"github.com/banshee-data/microflow.report/internal/transit/l1stack"
	"github.com/banshee-data/microflow.report/internal/transit/monitor"
	"github.com/banshee-data/microflow.report/internal/transit/pipeline"
	"github.com/banshee-data/microflow.report/internal/transit/render"
	"github.com/banshee-data/microflow.report/internal/units"
	"github.com/banshee-data/microflow.report/internal/version"
)

var (
	framesGlob   = flag.String("frames", "", "Glob pattern for per-frame TIFF/PNG exports (e.g. 'run/frame-*.tif')")
	metadataPath = flag.String("metadata", "", "Path to the Andor metadata text file")
	dbFile       = flag.String("db", "transit_data.db", "Path to the sqlite database")
	configPath   = flag.String("config", "", "Optional tuning config JSON")
	workers      = flag.Int("workers", 0, "Centroid extraction workers (0 = use config value)")
	gifOut       = flag.String("gif", "", "Optional output path for the centroid overlay GIF")
	histXOut     = flag.String("hist-x", "", "Optional output path for the x-velocity histogram PNG")
	histYOut     = flag.String("hist-y", "", "Optional output path for the y-velocity histogram PNG")
	listen       = flag.String("listen", "", "Optional listen address for the debug web server (e.g. :8080)")
	debug        = flag.Bool("debug", false, "Enable verbose pipeline logging")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("microflow %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if err := run(); err != nil {
		log.Fatalf("microflow: %v", err)
	}
}

func run() error {
	if *framesGlob == "" || *metadataPath == "" {
		return fmt.Errorf("both -frames and -metadata are required")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			return err
		}
		tuning = loaded
	}
	workerCount := tuning.GetWorkers()
	if *workers > 0 {
		workerCount = *workers
	}

	if *debug {
		pipeline.SetDebugLogger(os.Stderr)
	}

	source, err := l1stack.NewGlobSource(*framesGlob)
	if err != nil {
		return err
	}
	metadata := l1stack.NewMetadataFile(*metadataPath)

	store, err := db.NewDB(*dbFile)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &pipeline.Config{
		Workers: workerCount,
		Sink:    store,
	}
	res, err := cfg.Run(ctx, pipeline.Request{Source: source, Metadata: metadata})
	if err != nil {
		return err
	}

	pitch := tuning.GetPixelPitchMicrons()
	unit := tuning.GetVelocityUnits()
	if !units.IsValid(unit) {
		return fmt.Errorf("invalid velocity_units %q, valid values: %s", unit, units.GetValidUnitsString())
	}
	log.Printf("run %s: %d frames, mean velocity x=%.4f y=%.4f (%s)",
		res.RunID, res.FrameCount,
		units.ConvertVelocity(res.XStats.Mean, pitch, unit),
		units.ConvertVelocity(res.YStats.Mean, pitch, unit),
		unit)

	if err := writeArtefacts(source, res, tuning); err != nil {
		return err
	}

	if *listen != "" {
		mux := http.NewServeMux()
		monitor.NewWebServer(store).RegisterRoutes(mux)
		log.Printf("debug server listening on %s", *listen)
		server := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			<-ctx.Done()
			_ = server.Close()
		}()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
	}
	return nil
}

func writeArtefacts(source l1stack.ImageSource, res *pipeline.Result, tuning *config.TuningConfig) error {
	if *gifOut != "" {
		if err := security.ValidateExportPath(*gifOut); err != nil {
			return err
		}
		frames, err := source.Frames()
		if err != nil {
			return err
		}
		fh, err := os.Create(*gifOut)
		if err != nil {
			return fmt.Errorf("create gif: %w", err)
		}
		defer fh.Close()
		err = render.WriteOverlayGIF(fh, frames, res.Rounded, render.OverlayConfig{
			DelayMs: tuning.GetOverlayDelayMs(),
		})
		if err != nil {
			return err
		}
		log.Printf("wrote overlay gif to %s", *gifOut)
	}

	bins := tuning.GetHistogramBins()
	for _, h := range []struct {
		path   string
		series []float64
		title  string
	}{
		{*histXOut, res.Kinematics.XVelocity, "Instantaneous velocity, x-coordinates"},
		{*histYOut, res.Kinematics.YVelocity, "Instantaneous velocity, y-coordinates"},
	} {
		if h.path == "" {
			continue
		}
		if err := security.ValidateExportPath(h.path); err != nil {
			return err
		}
		fh, err := os.Create(h.path)
		if err != nil {
			return fmt.Errorf("create histogram: %w", err)
		}
		err = render.WriteVelocityHistogramPNG(fh, h.series, render.HistogramConfig{Bins: bins, Title: h.title})
		cerr := fh.Close()
		if err != nil {
			return err
		}
		if cerr != nil {
			return cerr
		}
		log.Printf("wrote histogram to %s", h.path)
	}
	return nil
}
