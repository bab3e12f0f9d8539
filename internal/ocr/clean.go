package ocr

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// CleanConfig controls line cleanup right after OCR.
type CleanConfig struct {
	// MinY drops boxes whose top edge lies above this line (running headers).
	// Default: 260 pixels.
	MinY int `mapstructure:"min_y" yaml:"min_y"`

	// SplitWidth is the width above which a line containing '|' is taken to
	// be two or more lines greedily joined by OCR, and split.
	// Default: 200 pixels.
	SplitWidth int `mapstructure:"split_width" yaml:"split_width"`

	// PhoneFrom (inclusive) and PhoneTo (exclusive) bound the volume dates
	// that print telephone numbers, which are marked with '↯'.
	PhoneFrom string `mapstructure:"phone_from" yaml:"phone_from"`
	PhoneTo   string `mapstructure:"phone_to" yaml:"phone_to"`
}

// DefaultCleanConfig returns the settings used for the Bern volumes.
func DefaultCleanConfig() CleanConfig {
	return CleanConfig{
		MinY:       260,
		SplitWidth: 200,
		PhoneFrom:  "1885",
		PhoneTo:    "1925",
	}
}

var (
	leadingDash  = regexp.MustCompile(`^-(\w)`)
	hashPhone    = regexp.MustCompile(`#\s*(\d{3,})`)
	barePhone    = regexp.MustCompile(`\s+(\d{4,})\b([^\]]|$)`)
	periodLetter = regexp.MustCompile(`\.(\p{L})`)
)

// MaxCoord bounds box coordinates. Page scans are a few thousand pixels
// wide; anything beyond this is an OCR artifact.
const MaxCoord = 1 << 16

// Validate splits boxes into valid ones and errors for the malformed ones:
// non-positive sizes, negative positions and boxes reaching past MaxCoord.
// Each error wraps report.ErrMalformedBox.
func Validate(boxes []types.TextBox) ([]types.TextBox, []error) {
	valid := make([]types.TextBox, 0, len(boxes))
	var errs []error
	for i, b := range boxes {
		if !b.Valid() || b.X < 0 || b.Y < 0 || b.Width > MaxCoord || b.Height > MaxCoord ||
			b.X > MaxCoord-b.Width || b.Y > MaxCoord-b.Height {
			errs = append(errs, fmt.Errorf("box %d (%s) %q: %w", i, b.Box, b.Text, report.ErrMalformedBox))
			continue
		}
		valid = append(valid, b)
	}
	return valid, errs
}

// Clean normalizes OCR line boxes of one page in the given volume.
// It never mutates its input.
func Clean(boxes []types.TextBox, date string, cfg CleanConfig) []types.TextBox {
	phones := cfg.PhoneFrom != "" && date >= cfg.PhoneFrom && date < cfg.PhoneTo

	out := make([]types.TextBox, 0, len(boxes))
	for _, b := range boxes {
		if b.Y < cfg.MinY {
			continue
		}
		text := cleanText(b.Text, phones)
		if text == "" || text == "-" || text == "↯" {
			continue
		}
		if cfg.SplitWidth > 0 && b.Width > cfg.SplitWidth && strings.Contains(text, "|") {
			out = append(out, splitGreedy(b.Box, text)...)
			continue
		}
		out = append(out, types.TextBox{Box: b.Box, Text: text})
	}
	return out
}

func cleanText(text string, phones bool) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "ſ", "s")
	text = strings.ReplaceAll(text, "'", "’")
	if strings.Contains(text, "#") {
		if phones {
			text = hashPhone.ReplaceAllString(text, "↯$1")
		}
		text = strings.ReplaceAll(text, "#", " ")
	}
	if phones {
		text = barePhone.ReplaceAllString(text, " ↯$1$2")
	}
	text = periodLetter.ReplaceAllString(text, ". $1")
	text = strings.Join(strings.Fields(text), " ")
	text = leadingDash.ReplaceAllString(text, "- $1")
	return text
}

// splitGreedy splits a line at '|' into equally wide boxes.
func splitGreedy(box types.Box, text string) []types.TextBox {
	parts := strings.Split(text, "|")
	n := len(parts)
	w := box.Width / n
	var out []types.TextBox
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, types.TextBox{
			Box:  types.Box{X: box.X + i*box.Width/n, Y: box.Y, Width: w, Height: box.Height},
			Text: p,
		})
	}
	return out
}
