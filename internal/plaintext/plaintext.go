// Package plaintext reads and writes the proofreading format.
//
// A volume file is a sequence of pages. Each page starts with a marker line
// and is followed by one line per entry, optionally each followed by a box
// line listing the bounding boxes of the entry's OCR lines:
//
//	# Date: 1944-12-15 Page: 29210065/[12]
//	Müller Hans, Kramgasse 10 (Sattler)
//	# Box: 100,300,300,30;140,340,300,30
//
// Lines starting with '#' are metadata and never entry text.
package plaintext

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackzampolin/adrbuch/internal/types"
)

const (
	// MetaPrefix starts every metadata line.
	MetaPrefix = "#"
	// BoxPrefix starts a box line.
	BoxPrefix  = "# Box: "
	datePrefix = "# Date: "
)

var pageMarker = regexp.MustCompile(`^# Date: (\d{4}-\d\d-\d\d) Page: (\d+)/(\S+)$`)

// Entry is one entry line with its boxes.
type Entry struct {
	Text  string      `json:"text" yaml:"text"`
	Boxes []types.Box `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	// Line is the 1-based line number of the text in the parsed file.
	Line int `json:"-" yaml:"-"`
}

// Bounds returns the union of the entry's boxes.
func (e Entry) Bounds() types.Box {
	return types.UnionAll(e.Boxes)
}

// Page is a page marker and the entries below it.
type Page struct {
	Ref     types.PageRef `json:"ref" yaml:"ref"`
	Entries []Entry       `json:"entries" yaml:"entries"`
}

// IsMeta reports whether a line is metadata.
func IsMeta(line string) bool {
	return strings.HasPrefix(line, MetaPrefix)
}

// IsBoxLine reports whether a line is a box line.
func IsBoxLine(line string) bool {
	return strings.HasPrefix(line, BoxPrefix)
}

// PageMarker formats the marker line of a page.
func PageMarker(ref types.PageRef) string {
	return fmt.Sprintf("%s%s Page: %d/%s", datePrefix, ref.Date, ref.PageID, ref.DisplayLabel())
}

// ParsePageMarker parses a marker line produced by PageMarker.
func ParsePageMarker(line string) (types.PageRef, error) {
	m := pageMarker.FindStringSubmatch(line)
	if m == nil {
		return types.PageRef{}, fmt.Errorf("malformed page marker %q", line)
	}
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return types.PageRef{}, fmt.Errorf("page marker %q: %w", line, err)
	}
	label, implicit, err := types.ParsePageLabel(m[3])
	if err != nil {
		return types.PageRef{}, fmt.Errorf("page marker %q: %w", line, err)
	}
	return types.PageRef{Date: m[1], PageID: id, Label: label, Implicit: implicit}, nil
}

// BoxLine formats the box line for boxes.
func BoxLine(boxes []types.Box) string {
	parts := make([]string, len(boxes))
	for i, b := range boxes {
		parts[i] = b.String()
	}
	return BoxPrefix + strings.Join(parts, ";")
}

// ParseBoxLine parses a line produced by BoxLine.
func ParseBoxLine(line string) ([]types.Box, error) {
	rest, ok := strings.CutPrefix(line, BoxPrefix)
	if !ok {
		return nil, fmt.Errorf("not a box line: %q", line)
	}
	var boxes []types.Box
	for _, part := range strings.Split(rest, ";") {
		b, err := types.ParseBox(part)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}

// EntryText makes text safe for an entry line: a single line that does not
// start with the metadata prefix.
func EntryText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(strings.TrimLeft(text, MetaPrefix))
}

// Writer writes volume files.
type Writer struct {
	w     *bufio.Writer
	boxes bool
}

// NewWriter creates a writer. With boxes set, every entry is followed by
// its box line.
func NewWriter(w io.Writer, boxes bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), boxes: boxes}
}

// Page writes a page marker.
func (w *Writer) Page(ref types.PageRef) error {
	_, err := fmt.Fprintln(w.w, PageMarker(ref))
	return err
}

// Entry writes one entry. Entries whose text is empty are skipped.
func (w *Writer) Entry(text string, boxes []types.Box) error {
	text = EntryText(text)
	if text == "" {
		return nil
	}
	if _, err := fmt.Fprintln(w.w, text); err != nil {
		return err
	}
	if w.boxes && len(boxes) > 0 {
		if _, err := fmt.Fprintln(w.w, BoxLine(boxes)); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Write writes pages to w.
func Write(w io.Writer, pages []Page, boxes bool) error {
	pw := NewWriter(w, boxes)
	for _, p := range pages {
		if err := pw.Page(p.Ref); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if err := pw.Entry(e.Text, e.Boxes); err != nil {
				return err
			}
		}
	}
	return pw.Flush()
}

// Parse reads a volume file. name is used in error messages.
func Parse(r io.Reader, name string) ([]Page, error) {
	var pages []Page
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, datePrefix):
			ref, err := ParsePageMarker(line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, n, err)
			}
			pages = append(pages, Page{Ref: ref})

		case IsBoxLine(line):
			entry := lastEntry(pages)
			if entry == nil {
				return nil, fmt.Errorf("%s:%d: box line without entry", name, n)
			}
			if entry.Boxes != nil {
				return nil, fmt.Errorf("%s:%d: second box line for entry on line %d", name, n, entry.Line)
			}
			boxes, err := ParseBoxLine(line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, n, err)
			}
			entry.Boxes = boxes

		case IsMeta(line):
			return nil, fmt.Errorf("%s:%d: unknown directive %q", name, n, line)

		default:
			if len(pages) == 0 {
				return nil, fmt.Errorf("%s:%d: entry before first page marker", name, n)
			}
			p := &pages[len(pages)-1]
			p.Entries = append(p.Entries, Entry{Text: strings.TrimSpace(line), Line: n})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return pages, nil
}

func lastEntry(pages []Page) *Entry {
	if len(pages) == 0 {
		return nil
	}
	p := &pages[len(pages)-1]
	if len(p.Entries) == 0 {
		return nil
	}
	return &p.Entries[len(p.Entries)-1]
}
