// Package metrics tracks how long pipeline stages take per page.
package metrics

import "time"

// Metric is a single timed stage run on one page.
type Metric struct {
	// Attribution (for filtering/aggregation)
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	PageID int    `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Stage  string `json:"stage" yaml:"stage"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// Status
	Success bool `json:"success" yaml:"success"`
}
