package scan

import (
	"image"

	"github.com/disintegration/imaging"
)

// DividerConfig controls printed column rule detection on scans.
type DividerConfig struct {
	// BandRatio is the central share of the page width searched for the rule.
	// Default: 0.4 (from 30% to 70% of the width)
	BandRatio float64 `mapstructure:"band_ratio" yaml:"band_ratio"`

	// MarginRatio is cut from the top and bottom before searching.
	// Default: 0.1
	MarginRatio float64 `mapstructure:"margin_ratio" yaml:"margin_ratio"`

	// DarkThreshold is the gray level (0-255) below which a pixel counts as ink.
	// Default: 110
	DarkThreshold uint8 `mapstructure:"dark_threshold" yaml:"dark_threshold"`

	// MinRunRatio is the minimum vertical run of ink, relative to the searched
	// height, for a rule to be accepted.
	// Default: 0.5
	MinRunRatio float64 `mapstructure:"min_run_ratio" yaml:"min_run_ratio"`
}

const maxRuleGap = 3

// DefaultDividerConfig returns sensible defaults for 2000px scans.
func DefaultDividerConfig() DividerConfig {
	return DividerConfig{
		BandRatio:     0.4,
		MarginRatio:   0.1,
		DarkThreshold: 110,
		MinRunRatio:   0.5,
	}
}

// DetectDivider looks for the printed vertical rule between two columns.
// It returns the rule's x coordinate in image pixels, or false when no
// column holds a long enough run of ink.
func DetectDivider(img image.Image, cfg DividerConfig) (int, bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0, false
	}

	gray := imaging.Grayscale(img)

	top := int(float64(h) * cfg.MarginRatio)
	bottom := h - top
	if bottom-top <= 0 {
		return 0, false
	}
	bandLeft := int(float64(w) * (1 - cfg.BandRatio) / 2)
	bandRight := w - bandLeft

	dark := func(x, y int) bool {
		// Grayscale returns NRGBA with equal color channels.
		return gray.Pix[y*gray.Stride+x*4] < cfg.DarkThreshold
	}

	runs := make([]int, bandRight-bandLeft)
	for i := range runs {
		x := bandLeft + i
		run, gap, longest := 0, 0, 0
		for y := top; y < bottom; y++ {
			if dark(x, y) {
				run += gap + 1
				gap = 0
				longest = max(longest, run)
				continue
			}
			// Printed rules are often broken by a pixel or two.
			gap++
			if gap > maxRuleGap {
				run, gap = 0, 0
			}
		}
		runs[i] = longest
	}

	best := 0
	for i, r := range runs {
		if r > runs[best] {
			best = i
		}
	}
	if len(runs) == 0 || float64(runs[best]) < cfg.MinRunRatio*float64(bottom-top) {
		return 0, false
	}

	// A rule several pixels wide yields a plateau; take its middle.
	last := best
	for last+1 < len(runs) && runs[last+1] == runs[best] {
		last++
	}
	bestX := bandLeft + (best+last)/2
	return bounds.Min.X + bestX, true
}
