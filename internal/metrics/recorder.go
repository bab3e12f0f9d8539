package metrics

import (
	"sort"
	"sync"
	"time"
)

// Recorder collects metrics in memory. Safe for concurrent use.
// A nil *Recorder discards everything.
type Recorder struct {
	mu      sync.Mutex
	metrics []Metric
}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record stores a single metric.
func (r *Recorder) Record(m Metric) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

// Time runs fn and records its duration for stage.
func (r *Recorder) Time(volume string, pageID int, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Record(Metric{
		Volume:   volume,
		PageID:   pageID,
		Stage:    stage,
		Duration: time.Since(start),
		Success:  err == nil,
	})
	return err
}

// Len returns the number of recorded metrics.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.metrics)
}

// Stages returns the names of all recorded stages, sorted.
func (r *Recorder) Stages() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var names []string
	for _, m := range r.metrics {
		if !seen[m.Stage] {
			seen[m.Stage] = true
			names = append(names, m.Stage)
		}
	}
	sort.Strings(names)
	return names
}

// snapshot returns a copy of the metrics matching keep.
func (r *Recorder) snapshot(keep func(Metric) bool) []Metric {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Metric
	for _, m := range r.metrics {
		if keep == nil || keep(m) {
			out = append(out, m)
		}
	}
	return out
}
