// Package pipeline runs ingestion, rasterization and encoding in order.
// Each stage finishes before the next begins.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"dominion/internal/config"
	"dominion/internal/database"
	"dominion/internal/dump"
	"dominion/internal/log"
	"dominion/internal/metrics"
	"dominion/internal/render"
	"dominion/internal/sink"
	"dominion/internal/store"
)

// ErrDumpOpen is returned when the dump cannot be opened; nothing has been
// parsed at that point
var ErrDumpOpen = errors.New("cannot open dump")

// Options select the input, output and optional side outputs of a run
type Options struct {
	DumpPath     string
	OutputPath   string
	DatabasePath string
	MetricsPath  string
	Config       config.Config
}

// Result is everything a run produced
type Result struct {
	RunID  string
	Stats  dump.Stats
	Store  *store.Store
	Bounds render.Bounds
	Image  *image.RGBA
}

// Pipeline holds one run's collaborators
type Pipeline struct {
	opts    Options
	runID   string
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewPipeline creates a pipeline with a fresh run id
func NewPipeline(opts Options) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		opts:    opts,
		runID:   runID,
		logger:  log.With("run", runID),
		metrics: metrics.NewCollector(),
	}
}

// RunID returns the identifier attached to logs and snapshots
func (p *Pipeline) RunID() string { return p.runID }

// Metrics returns the run's collector
func (p *Pipeline) Metrics() *metrics.Collector { return p.metrics }

// Ingest opens and parses the dump into a new store
func (p *Pipeline) Ingest() (*store.Store, dump.Stats, error) {
	f, err := os.Open(p.opts.DumpPath)
	if err != nil {
		return nil, dump.Stats{}, fmt.Errorf("%w: %w", ErrDumpOpen, err)
	}
	defer f.Close()

	st := store.New()
	parser := dump.NewParser(st, p.opts.Config.DumpConfig())
	parser.SetLogger(p.logger.With("component", "dump"))

	start := time.Now()
	stats, err := parser.Parse(f)
	if err != nil {
		return nil, stats, err
	}

	p.metrics.ObserveParse(stats)
	p.metrics.ObserveStore(st)
	p.logger.Info("dump parsed",
		"file", p.opts.DumpPath,
		"lines", stats.Lines,
		"truncated", stats.TruncatedLines,
		"agents", st.AgentCount(),
		"objects", st.ObjectCount(),
		"dropped", stats.TotalDropped(),
		"skipped", stats.SkippedRows,
		"unknown_tables", stats.UnknownTables,
		"elapsed", time.Since(start))
	return st, stats, nil
}

// Render rasterizes st with the configured options
func (p *Pipeline) Render(st *store.Store) (render.Bounds, *image.RGBA, error) {
	bounds := render.ComputeBounds(st)
	img, err := render.Rasterize(st, p.opts.Config.RenderOptions())
	if err != nil {
		return bounds, nil, fmt.Errorf("failed to rasterize: %w", err)
	}
	size := img.Bounds().Size()
	p.metrics.ObserveCanvas(size.X, size.Y)
	p.logger.Info("map rasterized", "max_x", bounds.MaxX, "max_y", bounds.MaxY, "width", size.X, "height", size.Y)
	return bounds, img, nil
}

// Run executes every stage. An encode failure is returned after the
// snapshot and metrics side outputs have been attempted.
func (p *Pipeline) Run() (*Result, error) {
	st, stats, err := p.Ingest()
	if err != nil {
		return nil, err
	}

	bounds, img, err := p.Render(st)
	if err != nil {
		return nil, err
	}

	res := &Result{RunID: p.runID, Stats: stats, Store: st, Bounds: bounds, Image: img}

	var errs []error
	if p.opts.OutputPath != "" {
		if err := sink.Encode(p.opts.OutputPath, img); err != nil {
			p.logger.Error("encode failed", "path", p.opts.OutputPath, "error", err)
			errs = append(errs, err)
		} else {
			p.logger.Info("map written", "path", p.opts.OutputPath)
		}
	}

	if p.opts.DatabasePath != "" {
		if err := p.saveSnapshot(st, stats); err != nil {
			errs = append(errs, err)
		}
	}

	if p.opts.MetricsPath != "" {
		if err := p.metrics.WriteTextfile(p.opts.MetricsPath); err != nil {
			errs = append(errs, err)
		}
	}

	return res, errors.Join(errs...)
}

func (p *Pipeline) saveSnapshot(st *store.Store, stats dump.Stats) error {
	db := database.NewDatabase()
	if err := db.CreateDatabase(p.opts.DatabasePath); err != nil {
		return err
	}
	defer db.CloseDatabase()

	run := database.Run{
		ID:      p.runID,
		Source:  p.opts.DumpPath,
		Lines:   stats.Lines,
		Dropped: stats.TotalDropped(),
	}
	return db.SaveSnapshot(run, st)
}
