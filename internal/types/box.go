// Package types provides shared types used across multiple packages.
// This package has no dependencies on other adrbuch packages to avoid import cycles.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Box is an axis-aligned bounding box in scan pixel coordinates.
// Origin is the top-left corner of the scan; y grows downward.
type Box struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the exclusive right edge.
func (b Box) Right() int { return b.X + b.Width }

// Bottom returns the exclusive bottom edge.
func (b Box) Bottom() int { return b.Y + b.Height }

// CenterX returns the horizontal center.
func (b Box) CenterX() float64 { return float64(b.X) + float64(b.Width)/2 }

// CenterY returns the vertical center.
func (b Box) CenterY() float64 { return float64(b.Y) + float64(b.Height)/2 }

// Valid reports whether the box has a positive area.
func (b Box) Valid() bool { return b.Width > 0 && b.Height > 0 }

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	x1 := min(b.X, other.X)
	y1 := min(b.Y, other.Y)
	x2 := max(b.Right(), other.Right())
	y2 := max(b.Bottom(), other.Bottom())
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// VerticalOverlap returns how many pixel rows b and other share.
func (b Box) VerticalOverlap(other Box) int {
	top := max(b.Y, other.Y)
	bottom := min(b.Bottom(), other.Bottom())
	if bottom <= top {
		return 0
	}
	return bottom - top
}

// String formats the box as "x,y,w,h", the form used in box marker lines.
func (b Box) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
}

// ParseBox parses the "x,y,w,h" form produced by String.
func ParseBox(s string) (Box, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("box %q: want 4 comma-separated values, got %d", s, len(parts))
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Box{}, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = n
	}
	return Box{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// UnionAll returns the union of all boxes, or the zero Box if boxes is empty.
func UnionAll(boxes []Box) Box {
	if len(boxes) == 0 {
		return Box{}
	}
	u := boxes[0]
	for _, b := range boxes[1:] {
		u = u.Union(b)
	}
	return u
}
