// Package segment splits a page into its printed columns.
//
// A Resolver decides where the column divider of a page lies. A manual
// override for the page always wins; otherwise the configured detectors are
// asked in order and the first one that finds a divider is used. Split then
// assigns every box to the column its horizontal center falls in.
package segment

import (
	"errors"
	"log/slog"
	"maps"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Detector computes a divider candidate from page evidence.
type Detector interface {
	// Source names the evidence the detector uses.
	Source() types.DividerSource
	// Detect returns the divider x coordinate, or false if none was found.
	Detect(pageID int, boxes []types.TextBox) (int, bool, error)
}

// Resolver resolves the divider of a page from overrides and detectors.
type Resolver struct {
	overrides map[int]int
	detectors []Detector
	logger    *slog.Logger
}

// NewResolver creates a resolver. The overrides map is copied.
func NewResolver(overrides map[int]int, logger *slog.Logger, detectors ...Detector) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		overrides: maps.Clone(overrides),
		detectors: detectors,
		logger:    logger,
	}
}

// Resolve returns the divider of a page, or nil for a single-column page.
//
// A non-nil error never means failure of the page: it wraps
// report.ErrAmbiguousDivider when detection was inconclusive, or
// report.ErrNoColumnGap when the text shows no gap, and the page is then
// treated as a single column.
func (r *Resolver) Resolve(pageID int, boxes []types.TextBox) (*types.Divider, error) {
	if x, ok := r.overrides[pageID]; ok {
		return &types.Divider{X: x, Source: types.DividerManual}, nil
	}
	return r.detect(pageID, boxes)
}

func (r *Resolver) detect(pageID int, boxes []types.TextBox) (*types.Divider, error) {
	var ambiguous, single error
	for _, d := range r.detectors {
		x, ok, err := d.Detect(pageID, boxes)
		if err != nil {
			switch {
			case errors.Is(err, report.ErrAmbiguousDivider):
				ambiguous = err
			case errors.Is(err, report.ErrNoColumnGap):
				single = err
			default:
				r.logger.Warn("divider detector failed", "page", pageID, "source", d.Source(), "error", err)
			}
			continue
		}
		if ok {
			return &types.Divider{X: x, Source: d.Source()}, nil
		}
	}
	if ambiguous != nil {
		return nil, ambiguous
	}
	return nil, single
}

// Layout is a page split into columns.
type Layout struct {
	// Bounds is the union of all boxes, the printed text area.
	Bounds  types.Box
	Divider *types.Divider
	// Columns holds one slice per column, left to right.
	Columns [][]types.TextBox
}

// Split assigns boxes to columns by horizontal center. Boxes keep their
// relative input order within a column. Without a divider there is a single
// column.
func Split(boxes []types.TextBox, divider *types.Divider) Layout {
	all := make([]types.Box, len(boxes))
	for i, b := range boxes {
		all[i] = b.Box
	}
	layout := Layout{Bounds: types.UnionAll(all), Divider: divider}

	if divider == nil {
		layout.Columns = [][]types.TextBox{append([]types.TextBox(nil), boxes...)}
		return layout
	}

	var left, right []types.TextBox
	x := float64(divider.X)
	for _, b := range boxes {
		if b.CenterX() < x {
			left = append(left, b)
		} else {
			right = append(right, b)
		}
	}
	layout.Columns = [][]types.TextBox{left, right}
	return layout
}
