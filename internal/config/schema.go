package config

import (
	"time"

	"github.com/jackzampolin/adrbuch/internal/merge"
	"github.com/jackzampolin/adrbuch/internal/ocr"
	"github.com/jackzampolin/adrbuch/internal/order"
	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/segment"
)

// Config holds adrbuch configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Paths    PathsConfig     `mapstructure:"paths" yaml:"paths"`
	Volumes  VolumesConfig   `mapstructure:"volumes" yaml:"volumes"`
	Clean    ocr.CleanConfig `mapstructure:"clean" yaml:"clean"`
	Segment  SegmentConfig   `mapstructure:"segment" yaml:"segment"`
	Order    order.Config    `mapstructure:"order" yaml:"order"`
	Merge    merge.Config    `mapstructure:"merge" yaml:"merge"`
	Sanitize SanitizeConfig  `mapstructure:"sanitize" yaml:"sanitize"`
	Fetch    FetchConfig     `mapstructure:"fetch" yaml:"fetch"`

	// Workers is the number of pages of a volume processed at once.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// Boxes adds "# Box:" lines to converted volumes.
	Boxes    bool   `mapstructure:"boxes" yaml:"boxes"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// PathsConfig locates inputs and outputs. Empty values fall back to the
// home directory layout; values may reference ${ENV_VAR}.
type PathsConfig struct {
	Chapters      string `mapstructure:"chapters" yaml:"chapters"`
	Pages         string `mapstructure:"pages" yaml:"pages"`
	AdPages       string `mapstructure:"ad_pages" yaml:"ad_pages"`
	Dividers      string `mapstructure:"dividers" yaml:"dividers"`
	AddressReform string `mapstructure:"address_reform" yaml:"address_reform"`
	OCR           string `mapstructure:"ocr" yaml:"ocr"`
	Scans         string `mapstructure:"scans" yaml:"scans"`
	Proofread     string `mapstructure:"proofread" yaml:"proofread"`
	Crops         string `mapstructure:"crops" yaml:"crops"`
}

// VolumesConfig selects the volumes to process.
type VolumesConfig struct {
	// Process is a comma-separated list of volume dates; empty means all.
	// Also read from PROCESS_VOLUMES.
	Process string `mapstructure:"process" yaml:"process"`
	// MinDate skips volumes dated before it when Process is empty.
	MinDate string `mapstructure:"min_date" yaml:"min_date"`
}

// SegmentConfig configures column divider detection.
type SegmentConfig struct {
	Gap segment.GapConfig `mapstructure:"gap" yaml:"gap"`
	// UseScans enables divider detection on cached page scans.
	UseScans bool               `mapstructure:"use_scans" yaml:"use_scans"`
	Scan     scan.DividerConfig `mapstructure:"scan" yaml:"scan"`
}

// SanitizeConfig points at replacement tables. Empty paths select the
// built-in tables.
type SanitizeConfig struct {
	Rules     string `mapstructure:"rules" yaml:"rules"`
	Blackhole string `mapstructure:"blackhole" yaml:"blackhole"`
	// ReportUnused warns about rules that never matched during a run.
	ReportUnused bool `mapstructure:"report_unused" yaml:"report_unused"`
}

// FetchConfig configures scan downloads.
type FetchConfig struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Attempts uint          `mapstructure:"attempts" yaml:"attempts"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}
