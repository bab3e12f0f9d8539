package metrics

import (
	"sort"
)

// Stats summarizes the durations of one stage.
type Stats struct {
	Count        int `json:"count" yaml:"count"`
	SuccessCount int `json:"success_count" yaml:"success_count"`
	ErrorCount   int `json:"error_count" yaml:"error_count"`

	// Latency (seconds)
	TotalSeconds float64 `json:"total_seconds" yaml:"total_seconds"`
	LatencyAvg   float64 `json:"latency_avg" yaml:"latency_avg"`
	LatencyMin   float64 `json:"latency_min" yaml:"latency_min"`
	LatencyMax   float64 `json:"latency_max" yaml:"latency_max"`
	LatencyP50   float64 `json:"latency_p50" yaml:"latency_p50"`
	LatencyP95   float64 `json:"latency_p95" yaml:"latency_p95"`
}

// StageStats returns statistics for every recorded stage.
func (r *Recorder) StageStats() map[string]*Stats {
	out := make(map[string]*Stats)
	for _, stage := range r.Stages() {
		out[stage] = r.Stats(stage)
	}
	return out
}

// Stats returns statistics for one stage.
func (r *Recorder) Stats(stage string) *Stats {
	metrics := r.snapshot(func(m Metric) bool { return m.Stage == stage })

	stats := &Stats{Count: len(metrics)}
	if len(metrics) == 0 {
		return stats
	}

	latencies := make([]float64, 0, len(metrics))
	for _, m := range metrics {
		if m.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}
		latencies = append(latencies, m.Duration.Seconds())
	}

	sort.Float64s(latencies)
	stats.LatencyMin = latencies[0]
	stats.LatencyMax = latencies[len(latencies)-1]
	for _, l := range latencies {
		stats.TotalSeconds += l
	}
	stats.LatencyAvg = stats.TotalSeconds / float64(len(latencies))
	stats.LatencyP50 = percentile(latencies, 50)
	stats.LatencyP95 = percentile(latencies, 95)

	return stats
}

// percentile calculates the p-th percentile from a sorted slice of values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	idx := (p / 100.0) * float64(len(sorted)-1)

	// Interpolate between floor and ceil indices
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
