package types

import (
	"fmt"
	"strings"
)

// TextBox is one OCR-detected line with its bounding box.
// TextBoxes are inputs: stages group and reorder them but never mutate them.
type TextBox struct {
	Box
	Text string `json:"text" yaml:"text"`
}

// PageRef identifies a scanned page within a volume.
type PageRef struct {
	// Date is the volume's editorial deadline (YYYY-MM-DD).
	Date string `json:"date" yaml:"date"`
	// PageID is the scan identifier of the digitized page.
	PageID int `json:"page_id" yaml:"page_id"`
	// Label is the page number as printed, without brackets.
	Label string `json:"label" yaml:"label"`
	// Implicit is true when the label was inferred rather than printed.
	Implicit bool `json:"implicit" yaml:"implicit"`
}

// DisplayLabel renders the label, bracketed if implicit.
func (p PageRef) DisplayLabel() string {
	if p.Implicit {
		return "[" + p.Label + "]"
	}
	return p.Label
}

// ParsePageLabel splits a label like "[12]" into its value and implicit flag.
func ParsePageLabel(s string) (label string, implicit bool, err error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") || strings.HasSuffix(s, "]") {
		if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") || len(s) < 3 {
			return "", false, fmt.Errorf("unbalanced page label %q", s)
		}
		return s[1 : len(s)-1], true, nil
	}
	if s == "" {
		return "", false, fmt.Errorf("empty page label")
	}
	return s, false, nil
}

// Entry is one logical address-book record made of one or more OCR lines.
type Entry struct {
	Lines []TextBox `json:"lines" yaml:"lines"`
	// Text is the merged (and, after sanitizing, cleaned) entry text.
	Text string `json:"text" yaml:"text"`
}

// Boxes returns the bounding boxes of the constituent lines, in order.
func (e Entry) Boxes() []Box {
	boxes := make([]Box, len(e.Lines))
	for i, l := range e.Lines {
		boxes[i] = l.Box
	}
	return boxes
}

// Bounds returns the union of all constituent boxes.
func (e Entry) Bounds() Box {
	return UnionAll(e.Boxes())
}

// DividerSource tells where a divider coordinate came from.
type DividerSource string

const (
	// DividerManual is a coordinate from the manual exception table.
	DividerManual DividerSource = "manual"
	// DividerImage is a coordinate found in the scan image.
	DividerImage DividerSource = "image"
	// DividerGap is a coordinate computed from the box projection.
	DividerGap DividerSource = "gap"
)

// Divider is the vertical line separating two printed columns.
type Divider struct {
	X      int           `json:"x" yaml:"x"`
	Source DividerSource `json:"source" yaml:"source"`
}
