// Package order puts the boxes of one column into reading order.
//
// OCR engines do not reliably emit lines top to bottom, in particular on
// two-column pages. Boxes are grouped into row bands by vertical overlap,
// bands are read top to bottom by their centroid and boxes within a band left
// to right. The result depends only on the set of boxes, never on the order
// they were given in.
package order

import (
	"cmp"
	"slices"

	"github.com/jackzampolin/adrbuch/internal/types"
)

// Config holds configuration for row band grouping.
type Config struct {
	// OverlapRatio is the minimum vertical overlap of two boxes, relative to
	// the smaller height, for them to share a band.
	// Default: 0.5
	OverlapRatio float64 `mapstructure:"overlap_ratio" yaml:"overlap_ratio"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{OverlapRatio: 0.5}
}

// Orderer orders boxes into reading order.
type Orderer struct {
	config Config
}

// New creates an orderer with default configuration.
func New() *Orderer {
	return &Orderer{config: DefaultConfig()}
}

// NewWithConfig creates an orderer with custom configuration.
func NewWithConfig(config Config) *Orderer {
	return &Orderer{config: config}
}

// Band is a horizontal row of boxes.
type Band struct {
	// Boxes are sorted left to right.
	Boxes []types.TextBox
}

// Centroid returns the mean vertical center of the band's boxes.
func (b Band) Centroid() float64 {
	var sum float64
	for _, box := range b.Boxes {
		sum += box.CenterY()
	}
	return sum / float64(len(b.Boxes))
}

// Order returns a new slice with boxes in reading order.
func (o *Orderer) Order(boxes []types.TextBox) []types.TextBox {
	var out []types.TextBox
	for _, band := range o.Bands(boxes) {
		out = append(out, band.Boxes...)
	}
	return out
}

// Bands groups boxes into row bands ordered top to bottom.
func (o *Orderer) Bands(boxes []types.TextBox) []Band {
	if len(boxes) == 0 {
		return nil
	}

	sorted := slices.Clone(boxes)
	slices.SortFunc(sorted, compareBoxes)

	var bands []Band
	for _, box := range sorted {
		if n := len(bands); n > 0 && o.joins(bands[n-1], box) {
			bands[n-1].Boxes = append(bands[n-1].Boxes, box)
			continue
		}
		bands = append(bands, Band{Boxes: []types.TextBox{box}})
	}

	for i := range bands {
		slices.SortFunc(bands[i].Boxes, func(a, b types.TextBox) int {
			return cmp.Or(cmp.Compare(a.X, b.X), compareBoxes(a, b))
		})
	}
	slices.SortStableFunc(bands, func(a, b Band) int {
		return cmp.Or(
			cmp.Compare(a.Centroid(), b.Centroid()),
			compareBoxes(a.Boxes[0], b.Boxes[0]),
		)
	})
	return bands
}

// joins reports whether box overlaps any member of band enough to share it.
func (o *Orderer) joins(band Band, box types.TextBox) bool {
	for _, member := range band.Boxes {
		smaller := min(member.Height, box.Height)
		if float64(member.VerticalOverlap(box.Box)) >= o.config.OverlapRatio*float64(smaller) {
			return true
		}
	}
	return false
}

// compareBoxes is a total order on boxes, so sorting never depends on the
// input order.
func compareBoxes(a, b types.TextBox) int {
	return cmp.Or(
		cmp.Compare(a.CenterY(), b.CenterY()),
		cmp.Compare(a.X, b.X),
		cmp.Compare(a.Y, b.Y),
		cmp.Compare(a.Width, b.Width),
		cmp.Compare(a.Height, b.Height),
		cmp.Compare(a.Text, b.Text),
	)
}
