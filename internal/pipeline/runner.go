package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/adrbuch/internal/catalog"
	"github.com/jackzampolin/adrbuch/internal/metrics"
	"github.com/jackzampolin/adrbuch/internal/plaintext"
	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Config configures a Runner.
type Config struct {
	// Stages run in order for every page.
	Stages []Stage
	// IsAdPage reports pages that are skipped entirely.
	IsAdPage func(pageID int) bool
	// OutputDir receives one <date>.txt file per volume.
	OutputDir string
	// Workers bounds how many pages of a volume run at once.
	Workers int
	// Boxes adds box lines to the output.
	Boxes  bool
	Report *report.Recorder
	// Metrics, if set, receives the duration of every stage run.
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Runner processes volumes page by page through the stages.
type Runner struct {
	stages    []Stage
	isAdPage  func(int) bool
	outputDir string
	workers   int
	boxes     bool
	report    *report.Recorder
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("no stages to run")
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.IsAdPage == nil {
		cfg.IsAdPage = func(int) bool { return false }
	}
	if cfg.Report == nil {
		cfg.Report = report.NewRecorder()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		stages:    cfg.Stages,
		isAdPage:  cfg.IsAdPage,
		outputDir: cfg.OutputDir,
		workers:   cfg.Workers,
		boxes:     cfg.Boxes,
		report:    cfg.Report,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}, nil
}

// Run processes volumes one after another. It stops at the first volume
// that cannot be written or when ctx is cancelled; page failures only go to
// the report.
func (r *Runner) Run(ctx context.Context, volumes []catalog.Volume) error {
	for _, vol := range volumes {
		if _, err := r.RunVolume(ctx, vol); err != nil {
			return err
		}
	}
	return nil
}

// RunVolume processes one volume and returns the path of the written file.
func (r *Runner) RunVolume(ctx context.Context, vol catalog.Volume) (string, error) {
	logger := r.logger.With("volume", vol.Date)
	start := time.Now()

	var pages []types.PageRef
	for _, p := range vol.Pages {
		if r.isAdPage(p.PageID) {
			r.report.Count("pages_skipped", 1)
			continue
		}
		pages = append(pages, p)
	}

	results := make([]*PageState, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, ref := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := r.runPage(gctx, ref)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("page failed", "page", ref.PageID, "error", err)
				r.report.AddError(vol.Date, ref.PageID, err)
				r.report.Count("pages_failed", 1)
				return nil
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	path := filepath.Join(r.outputDir, vol.Date+".txt")
	entries, err := r.write(path, results)
	if err != nil {
		return "", err
	}

	r.report.Count("volumes", 1)
	logger.Info("volume converted",
		"pages", len(pages),
		"entries", entries,
		"path", path,
		"duration", time.Since(start).Round(time.Millisecond))
	return path, nil
}

// runPage sends one page through all stages. A panicking stage fails the
// page only.
func (r *Runner) runPage(ctx context.Context, ref types.PageRef) (*PageState, error) {
	st := &PageState{Ref: ref}
	for _, stage := range r.stages {
		err := r.metrics.Time(ref.Date, ref.PageID, stage.Name(), func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic: %v", p)
				}
			}()
			return stage.Run(ctx, st)
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", stage.Name(), err)
		}
	}
	for _, issue := range st.Issues {
		r.report.AddError(ref.Date, ref.PageID, issue)
	}
	r.report.Count("pages", 1)
	r.report.Count("lines", len(st.Boxes))
	return st, nil
}

// write stores the pages of a volume through a temporary file, so the
// previous version stays intact until the new one is complete.
func (r *Runner) write(path string, pages []*PageState) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	entries, err := writePages(tmp, pages, r.boxes)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	r.report.Count("entries", entries)
	return entries, nil
}

func writePages(w io.Writer, pages []*PageState, boxes bool) (int, error) {
	pw := plaintext.NewWriter(w, boxes)
	n := 0
	for _, st := range pages {
		if st == nil {
			continue
		}
		if err := pw.Page(st.Ref); err != nil {
			return n, err
		}
		for _, e := range st.Output() {
			if err := pw.Entry(e.Text, e.Boxes()); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, pw.Flush()
}

// Output returns the page's entries. When the stages stopped before
// merging, every line of the latest stage becomes an entry of its own.
func (p *PageState) Output() []types.Entry {
	if p.Entries != nil {
		return p.Entries
	}
	var lines []types.TextBox
	switch {
	case p.Columns != nil:
		for _, col := range p.Columns {
			lines = append(lines, col...)
		}
	case p.Layout.Columns != nil:
		for _, col := range p.Layout.Columns {
			lines = append(lines, col...)
		}
	default:
		lines = p.Boxes
	}
	entries := make([]types.Entry, len(lines))
	for i, l := range lines {
		entries[i] = types.Entry{Lines: []types.TextBox{l}, Text: l.Text}
	}
	return entries
}
