package ocr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/jackzampolin/adrbuch/internal/types"
)

var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_header":    true,
	"ocr_caption":   true,
	"ocr_textfloat": true,
}

// ParseHOCR extracts line boxes from an hOCR document.
// Boxes are returned in document order; degenerate boxes are kept so the
// caller can report them.
func ParseHOCR(r io.Reader) ([]types.TextBox, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing hOCR: %w", err)
	}

	var boxes []types.TextBox
	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && isLine(n) {
			box, err := parseBBox(attr(n, "title"))
			if err != nil {
				return fmt.Errorf("line %q: %w", attr(n, "id"), err)
			}
			text := strings.Join(strings.Fields(textContent(n)), " ")
			boxes = append(boxes, types.TextBox{Box: box, Text: text})
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return boxes, nil
}

func isLine(n *html.Node) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if lineClasses[class] {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}

// parseBBox reads "bbox x0 y0 x1 y1" from an hOCR title attribute.
// The title may carry further properties separated by semicolons.
func parseBBox(title string) (types.Box, error) {
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) == 0 || fields[0] != "bbox" {
			continue
		}
		if len(fields) != 5 {
			return types.Box{}, fmt.Errorf("bbox %q: want 4 coordinates", prop)
		}
		var v [4]int
		for i := range v {
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return types.Box{}, fmt.Errorf("bbox %q: %w", prop, err)
			}
			v[i] = n
		}
		return types.Box{X: v[0], Y: v[1], Width: v[2] - v[0], Height: v[3] - v[1]}, nil
	}
	return types.Box{}, fmt.Errorf("no bbox in title %q", title)
}
