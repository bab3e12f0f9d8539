package segment

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// GapConfig holds configuration for whitespace gap detection.
type GapConfig struct {
	// MinGapWidth is the minimum whitespace gap to consider as column separator.
	// Default: 20 pixels
	MinGapWidth int `mapstructure:"min_gap_width" yaml:"min_gap_width"`

	// MinColumnWidth is the minimum width of the text on either side of a gap.
	// Default: 200 pixels
	MinColumnWidth int `mapstructure:"min_column_width" yaml:"min_column_width"`

	// MaxSpanRatio excludes boxes wider than this share of the text span
	// (running headers, section titles) from the projection.
	// Default: 0.6
	MaxSpanRatio float64 `mapstructure:"max_span_ratio" yaml:"max_span_ratio"`
}

// DefaultGapConfig returns sensible default configuration.
func DefaultGapConfig() GapConfig {
	return GapConfig{
		MinGapWidth:    20,
		MinColumnWidth: 200,
		MaxSpanRatio:   0.6,
	}
}

// GapDetector finds the column divider as the widest vertical strip of the
// text area that no box covers.
type GapDetector struct {
	config GapConfig
}

// NewGapDetector creates a gap detector with default configuration.
func NewGapDetector() *GapDetector {
	return &GapDetector{config: DefaultGapConfig()}
}

// NewGapDetectorWithConfig creates a gap detector with custom configuration.
func NewGapDetectorWithConfig(config GapConfig) *GapDetector {
	return &GapDetector{config: config}
}

// Source implements Detector.
func (d *GapDetector) Source() types.DividerSource { return types.DividerGap }

// Detect implements Detector. A gap that exists but is narrower than
// MinGapWidth yields an error wrapping report.ErrAmbiguousDivider. A page of
// two or more boxes without any gap yields report.ErrNoColumnGap.
func (d *GapDetector) Detect(_ int, boxes []types.TextBox) (int, bool, error) {
	gap, ok := d.widestGap(boxes)
	if !ok {
		if len(boxes) < 2 {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("no gap among %d boxes: %w", len(boxes), report.ErrNoColumnGap)
	}
	if gap.width() < d.config.MinGapWidth {
		return 0, false, fmt.Errorf("widest gap %d..%d is %dpx, below %dpx: %w",
			gap.left, gap.right, gap.width(), d.config.MinGapWidth, report.ErrAmbiguousDivider)
	}
	return gap.left + gap.width()/2, true, nil
}

// slab is a horizontal pixel range [left, right).
type slab struct {
	left, right int
}

func (s slab) width() int { return s.right - s.left }

// widestGap sweeps the box intervals from left to right and returns the
// widest uncovered run that leaves MinColumnWidth of text on both sides.
func (d *GapDetector) widestGap(boxes []types.TextBox) (slab, bool) {
	if len(boxes) < 2 {
		return slab{}, false
	}

	full := textSpan(boxes)
	limit := int(float64(full.width()) * d.config.MaxSpanRatio)

	var kept []slab
	for _, b := range boxes {
		if d.config.MaxSpanRatio > 0 && b.Width > limit {
			continue
		}
		kept = append(kept, slab{left: b.X, right: b.Right()})
	}
	if len(kept) < 2 {
		return slab{}, false
	}
	slices.SortFunc(kept, func(a, b slab) int {
		return cmp.Or(cmp.Compare(a.left, b.left), cmp.Compare(a.right, b.right))
	})

	span := slab{left: kept[0].left, right: kept[0].right}
	for _, k := range kept[1:] {
		span.right = max(span.right, k.right)
	}

	var best slab
	found := false
	reach := kept[0].right
	for _, k := range kept[1:] {
		if k.left > reach {
			g := slab{left: reach, right: k.left}
			if g.left-span.left >= d.config.MinColumnWidth && span.right-g.right >= d.config.MinColumnWidth &&
				(!found || g.width() > best.width()) {
				best, found = g, true
			}
		}
		reach = max(reach, k.right)
	}
	return best, found
}

func textSpan(boxes []types.TextBox) slab {
	s := slab{left: boxes[0].X, right: boxes[0].Right()}
	for _, b := range boxes[1:] {
		s.left = min(s.left, b.X)
		s.right = max(s.right, b.Right())
	}
	return s
}
