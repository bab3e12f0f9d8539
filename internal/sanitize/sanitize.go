// Package sanitize corrects OCR text with replacement rules and removes noise
// lines.
//
// Rules and blackhole sets are loaded once and shared read-only. A Sanitizer
// wraps them for one run and counts how often each rule fired, so that
// rules which never match can be reported.
package sanitize

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/jackzampolin/adrbuch/internal/plaintext"
	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Sanitizer applies rules and a blackhole, counting hits.
type Sanitizer struct {
	rules     *Rules
	blackhole *Blackhole

	hits    []atomic.Int64
	dropped atomic.Int64
}

// New creates a sanitizer. Nil arguments mean no rules or no blackhole.
func New(rules *Rules, blackhole *Blackhole) *Sanitizer {
	if rules == nil {
		rules = &Rules{}
	}
	if blackhole == nil {
		blackhole = NewBlackhole()
	}
	return &Sanitizer{
		rules:     rules,
		blackhole: blackhole,
		hits:      make([]atomic.Int64, rules.Len()),
	}
}

// Text applies the replacement rules to s.
func (s *Sanitizer) Text(text string) string {
	out, _ := s.rules.apply(text, func(i int) { s.hits[i].Add(1) })
	return out
}

// Line normalizes an entry line and applies the rules, repeating both until
// the line no longer changes. Feeding the result back returns it unchanged,
// whatever whitespace a proofreader left in the input.
func (s *Sanitizer) Line(line string) string {
	text := plaintext.EntryText(line)
	for range maxPasses {
		next := plaintext.EntryText(s.Text(text))
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Drop reports whether a line is noise, counting it if so.
func (s *Sanitizer) Drop(line string) bool {
	if s.blackhole.Match(line) {
		s.dropped.Add(1)
		return true
	}
	return false
}

// FilterBoxes removes noise lines from OCR boxes.
func (s *Sanitizer) FilterBoxes(boxes []types.TextBox) []types.TextBox {
	out := make([]types.TextBox, 0, len(boxes))
	for _, b := range boxes {
		if !s.Drop(b.Text) {
			out = append(out, b)
		}
	}
	return out
}

// Entries returns copies of entries with sanitized text. Entries that end up
// empty or blackholed are removed.
func (s *Sanitizer) Entries(entries []types.Entry) []types.Entry {
	out := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		e.Text = s.Line(e.Text)
		if e.Text == "" || s.Drop(e.Text) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Dropped returns the number of noise lines removed so far.
func (s *Sanitizer) Dropped() int64 {
	return s.dropped.Load()
}

// Hits returns the hit count of every rule, in table order.
func (s *Sanitizer) Hits() []int64 {
	out := make([]int64, len(s.hits))
	for i := range s.hits {
		out[i] = s.hits[i].Load()
	}
	return out
}

// Unused returns an error wrapping report.ErrUnknownReplacementPattern for
// every rule that has not matched anything yet.
func (s *Sanitizer) Unused() []error {
	var errs []error
	for i := range s.hits {
		if s.hits[i].Load() == 0 {
			errs = append(errs, fmt.Errorf("rule %d (%s) never matched: %w",
				i, s.rules.Rule(i), report.ErrUnknownReplacementPattern))
		}
	}
	return errs
}

// FileStats summarizes a SanitizeFile run.
type FileStats struct {
	Lines   int `json:"lines" yaml:"lines"`
	Changed int `json:"changed" yaml:"changed"`
	Dropped int `json:"dropped" yaml:"dropped"`
}

// SanitizeFile rewrites a volume file in place. Metadata lines are kept
// verbatim; entry lines are sanitized, and dropped together with their box
// line when blackholed. The file is replaced atomically.
func (s *Sanitizer) SanitizeFile(path string) (FileStats, error) {
	var stats FileStats

	in, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("failed to open volume: %w", err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return stats, fmt.Errorf("failed to stat volume: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return stats, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	skipBox := false
	for scanner.Scan() {
		line := scanner.Text()
		if plaintext.IsMeta(line) {
			if skipBox && plaintext.IsBoxLine(line) {
				skipBox = false
				continue
			}
			skipBox = false
			fmt.Fprintln(w, line)
			continue
		}
		skipBox = false
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(w, line)
			continue
		}

		stats.Lines++
		text := s.Line(line)
		if text == "" || s.Drop(text) {
			stats.Dropped++
			skipBox = true
			continue
		}
		if text != line {
			stats.Changed++
		}
		fmt.Fprintln(w, text)
	}
	if err := scanner.Err(); err != nil {
		tmp.Close()
		return stats, fmt.Errorf("failed to read volume: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return stats, fmt.Errorf("failed to write volume: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return stats, fmt.Errorf("failed to write volume: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return stats, fmt.Errorf("failed to write volume: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return stats, fmt.Errorf("failed to replace volume: %w", err)
	}
	return stats, nil
}
