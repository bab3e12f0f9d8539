package config

import (
	"time"

	"github.com/jackzampolin/adrbuch/internal/merge"
	"github.com/jackzampolin/adrbuch/internal/ocr"
	"github.com/jackzampolin/adrbuch/internal/order"
	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/segment"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Volumes: VolumesConfig{
			// Volumes up to 1862 use a layout the heuristics do not handle.
			MinDate: "1863",
		},
		Clean: ocr.DefaultCleanConfig(),
		Segment: SegmentConfig{
			Gap:      segment.DefaultGapConfig(),
			UseScans: true,
			Scan:     scan.DefaultDividerConfig(),
		},
		Order: order.DefaultConfig(),
		Merge: merge.DefaultConfig(),
		Sanitize: SanitizeConfig{
			ReportUnused: true,
		},
		Fetch: FetchConfig{
			BaseURL:  scan.DefaultBaseURL,
			Attempts: 3,
			Delay:    2 * time.Second,
			Timeout:  60 * time.Second,
		},
		Workers:  1,
		Boxes:    true,
		LogLevel: "info",
	}
}
