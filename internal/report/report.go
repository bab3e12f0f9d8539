// Package report collects non-fatal problems found during a batch run.
package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IssueKind names a class of problem.
type IssueKind string

const (
	KindMissingInput              IssueKind = "missing_input"
	KindMalformedBox              IssueKind = "malformed_box"
	KindAmbiguousDivider          IssueKind = "ambiguous_divider"
	KindSingleColumn              IssueKind = "single_column"
	KindUnknownReplacementPattern IssueKind = "unknown_replacement_pattern"
	KindVolumeNotFound            IssueKind = "volume_not_found"
	KindPageFailed                IssueKind = "page_failed"
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single reported problem with attribution.
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Volume   string    `json:"volume,omitempty" yaml:"volume,omitempty"`
	PageID   int       `json:"page_id,omitempty" yaml:"page_id,omitempty"`
	Message  string    `json:"message" yaml:"message"`
}

// Recorder aggregates issues. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	started time.Time
	issues  []Issue
	counts  map[string]int
}

// NewRecorder creates a recorder with a fresh run ID.
func NewRecorder() *Recorder {
	return &Recorder{
		runID:   uuid.New().String(),
		started: time.Now(),
		counts:  make(map[string]int),
	}
}

// RunID returns the identifier of this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Add records an issue.
func (r *Recorder) Add(issue Issue) {
	if issue.Severity == "" {
		issue.Severity = SeverityError
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issues = append(r.issues, issue)
}

// AddError classifies err and records it for the given page.
// AmbiguousDivider and UnknownReplacementPattern are warnings, SingleColumn is
// informational and everything else is an error.
func (r *Recorder) AddError(volume string, pageID int, err error) {
	if err == nil {
		return
	}
	kind := Kind(err)
	sev := SeverityError
	switch kind {
	case KindAmbiguousDivider, KindUnknownReplacementPattern:
		sev = SeverityWarning
	case KindSingleColumn:
		sev = SeverityInfo
	}
	r.Add(Issue{Kind: kind, Severity: sev, Volume: volume, PageID: pageID, Message: err.Error()})
}

// Count increments a named counter (pages, entries, ...).
func (r *Recorder) Count(name string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name] += n
}

// Summary is the end-of-run report.
type Summary struct {
	RunID           string         `json:"run_id" yaml:"run_id"`
	DurationSeconds float64        `json:"duration_seconds" yaml:"duration_seconds"`
	Counts          map[string]int `json:"counts" yaml:"counts"`
	Errors          int            `json:"errors" yaml:"errors"`
	Warnings        int            `json:"warnings" yaml:"warnings"`
	Notes           int            `json:"notes" yaml:"notes"`
	Issues          []Issue        `json:"issues" yaml:"issues"`
}

// Summary returns a snapshot of all recorded issues.
// Issues are sorted by volume, page and kind so the report is stable
// regardless of the order in which concurrent pages finished.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	issues := make([]Issue, len(r.issues))
	copy(issues, r.issues)
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Volume != b.Volume {
			return a.Volume < b.Volume
		}
		if a.PageID != b.PageID {
			return a.PageID < b.PageID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})

	counts := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		counts[k] = v
	}

	s := Summary{
		RunID:           r.runID,
		DurationSeconds: time.Since(r.started).Seconds(),
		Counts:          counts,
		Issues:          issues,
	}
	for _, is := range issues {
		switch is.Severity {
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Notes++
		default:
			s.Errors++
		}
	}
	return s
}
