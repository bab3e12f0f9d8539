package main

import (
	"cmp"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/merge"
	"github.com/jackzampolin/adrbuch/internal/metrics"
	"github.com/jackzampolin/adrbuch/internal/ocr"
	"github.com/jackzampolin/adrbuch/internal/order"
	"github.com/jackzampolin/adrbuch/internal/pipeline"
	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/segment"
)

var (
	convertVolumes string
	convertUntil   string
	convertOut     string
	convertWorkers int
	convertNoBoxes bool
)

type convertResult struct {
	report.Summary `yaml:",inline"`
	Stages         map[string]*metrics.Stats `json:"stages,omitempty" yaml:"stages,omitempty"`
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert OCR output into one text file per volume",
	Long: `Convert runs every selected volume through the page stages and writes
<proofread>/<date>.txt. A report of skipped pages, ambiguous dividers and
unused replacement rules is printed at the end.

Volumes are selected with --volumes or PROCESS_VOLUMES (comma-separated
dates); without either every volume from volumes.min_date on is converted.

Examples:
  adrbuch convert
  adrbuch convert --volumes 1880-01-01,1881-09-30 --workers 4
  adrbuch convert --volumes 1880-01-01 --until order --out /tmp/lines`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		cfg := a.cfg

		cat, err := a.loadCatalog()
		if err != nil {
			return err
		}
		volumes, err := a.selectVolumes(cat, convertVolumes)
		if err != nil {
			return err
		}
		if len(volumes) == 0 {
			a.logger.Warn("no volumes selected")
		}

		san, err := a.sanitizer()
		if err != nil {
			return err
		}

		deps := pipeline.StageDeps{
			Source:    ocr.NewSource(a.paths.OCR),
			Clean:     cfg.Clean,
			Orderer:   order.NewWithConfig(cfg.Order),
			Merger:    merge.NewWithConfig(cfg.Merge),
			Sanitizer: san,
		}

		var detectors []segment.Detector
		if cfg.Segment.UseScans {
			if info, err := os.Stat(a.paths.Scans); err == nil && info.IsDir() {
				images := scan.NewCache(a.paths.Scans)
				detectors = append(detectors, segment.NewImageDetector(images, cfg.Segment.Scan))
				deps.Images = images
			} else {
				a.logger.Debug("no scan directory, dividers come from text gaps", "dir", a.paths.Scans)
			}
		}
		detectors = append(detectors, segment.NewGapDetectorWithConfig(cfg.Segment.Gap))
		deps.Resolver = segment.NewResolver(cat.Dividers(), a.logger, detectors...)

		registry, err := pipeline.NewRegistry(pipeline.DefaultStages(deps)...)
		if err != nil {
			return err
		}
		var stages []pipeline.Stage
		if convertUntil != "" {
			stages, err = registry.Upto(convertUntil)
		} else {
			stages, err = registry.Ordered()
		}
		if err != nil {
			return err
		}

		workers := cfg.Workers
		if cmd.Flags().Changed("workers") {
			workers = convertWorkers
		}
		rec := report.NewRecorder()
		timings := metrics.NewRecorder()
		runner, err := pipeline.NewRunner(pipeline.Config{
			Stages:    stages,
			IsAdPage:  cat.IsAdPage,
			OutputDir: cmp.Or(convertOut, a.paths.Proofread),
			Workers:   workers,
			Boxes:     cfg.Boxes && !convertNoBoxes,
			Report:    rec,
			Metrics:   timings,
			Logger:    a.logger,
		})
		if err != nil {
			return err
		}

		a.logger.Info("converting", "run_id", rec.RunID(), "volumes", len(volumes), "workers", workers)
		runErr := runner.Run(ctx, volumes)

		// Rules only count as unused after a complete run.
		if runErr == nil && convertUntil == "" && cfg.Sanitize.ReportUnused {
			for _, err := range san.Unused() {
				rec.AddError("", 0, err)
			}
		}
		rec.Count("lines_blackholed", int(san.Dropped()))

		summary := rec.Summary()
		if err := a.output(convertResult{Summary: summary, Stages: timings.StageStats()}); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		if summary.Errors > 0 {
			a.logger.Warn("conversion finished with errors", "errors", summary.Errors)
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertVolumes, "volumes", "", "comma-separated volume dates (default: $PROCESS_VOLUMES)")
	convertCmd.Flags().StringVar(&convertUntil, "until", "", fmt.Sprintf("stop after this stage (%s, %s, %s, %s)",
		pipeline.StageIngest, pipeline.StageSegment, pipeline.StageOrder, pipeline.StageMerge))
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output directory (default: the proofread directory)")
	convertCmd.Flags().IntVarP(&convertWorkers, "workers", "w", 1, "pages processed at once")
	convertCmd.Flags().BoolVar(&convertNoBoxes, "no-boxes", false, "omit # Box: lines")

	rootCmd.AddCommand(convertCmd)
}
