// Package merge groups the ordered lines of a column into address-book
// entries.
//
// Long entries wrap onto indented follow-up lines. A line continues the
// current entry when it is indented relative to the column's running
// baseline, when the previous line ends with a hyphen, comma or join word,
// or when it starts with a join word. Lines starting with a dash are printed
// family sub-entries and always start an entry.
package merge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackzampolin/adrbuch/internal/types"
)

// Config holds configuration for entry merging.
type Config struct {
	// IndentTolerance is how far right of the baseline a line may start and
	// still count as not indented.
	// Default: 20 pixels
	IndentTolerance int `mapstructure:"indent_tolerance" yaml:"indent_tolerance"`

	// MaxIndentShift resets the baseline when a line starts further than this
	// from it (a new column or a badly warped scan).
	// Default: 200 pixels
	MaxIndentShift int `mapstructure:"max_indent_shift" yaml:"max_indent_shift"`

	// MaxGlueOffset is the largest vertical distance between the tops of two
	// lines that may still be glued.
	// Default: 100 pixels
	MaxGlueOffset int `mapstructure:"max_glue_offset" yaml:"max_glue_offset"`

	JoinWords   []string `mapstructure:"join_words" yaml:"join_words"`
	DashMarkers []string `mapstructure:"dash_markers" yaml:"dash_markers"`
}

// DefaultConfig returns the configuration tuned for the Bern volumes.
func DefaultConfig() Config {
	return Config{
		IndentTolerance: 20,
		MaxIndentShift:  200,
		MaxGlueOffset:   100,
		JoinWords:       DefaultJoinWords,
		DashMarkers:     DefaultDashMarkers,
	}
}

type state int

const (
	awaitingEntry state = iota
	inEntry
)

// Merger groups lines into entries.
type Merger struct {
	config Config
}

// New creates a merger with default configuration.
func New() *Merger {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a merger with custom configuration.
func NewWithConfig(config Config) *Merger {
	return &Merger{config: config}
}

// baseline tracks the left edge of unindented lines down a column.
type baseline struct {
	x   int
	set bool
}

// indented updates the baseline with a line starting at x and reports
// whether the line is indented.
func (b *baseline) indented(x, tolerance, maxShift int) bool {
	if !b.set {
		b.x, b.set = x, true
	}
	if abs(x-b.x) > maxShift || x < b.x {
		b.x = x
	}
	if x-b.x > tolerance {
		return true
	}
	// Follow slowly drifting margins of warped scans.
	b.x = x
	return false
}

// Merge groups an ordered column of lines into entries. Every input line
// ends up in exactly one entry, in input order.
func (m *Merger) Merge(lines []types.TextBox) []types.Entry {
	var (
		entries []types.Entry
		current types.Entry
		st      = awaitingEntry
		base    baseline
	)

	seal := func() {
		if st == inEntry {
			entries = append(entries, current)
		}
		current = types.Entry{}
		st = awaitingEntry
	}

	for _, line := range lines {
		indented := base.indented(line.X, m.config.IndentTolerance, m.config.MaxIndentShift)

		if st == inEntry && m.continues(current, line, indented) {
			current.Lines = append(current.Lines, line)
			current.Text = joinText(current.Text, line.Text)
			continue
		}

		seal()
		current = types.Entry{Lines: []types.TextBox{line}, Text: line.Text}
		st = inEntry
	}
	seal()
	return entries
}

// continues reports whether line is a continuation of the open entry.
func (m *Merger) continues(entry types.Entry, line types.TextBox, indented bool) bool {
	if m.isDashLine(line.Text) {
		return false
	}
	prev := entry.Lines[len(entry.Lines)-1]
	if abs(line.Y-prev.Y) > m.config.MaxGlueOffset {
		return false
	}
	return indented || m.endsOpen(prev.Text) || m.startsWithJoinWord(line.Text)
}

func (m *Merger) isDashLine(text string) bool {
	for _, d := range m.config.DashMarkers {
		if strings.HasPrefix(text, d) {
			return true
		}
	}
	return false
}

// endsOpen reports whether text ends with a hyphen, comma or join word.
func (m *Merger) endsOpen(text string) bool {
	if len(text) > 1 && (strings.HasSuffix(text, "-") || strings.HasSuffix(text, ",")) {
		return true
	}
	for _, w := range m.config.JoinWords {
		if rest, ok := strings.CutSuffix(text, w); ok {
			r, _ := utf8.DecodeLastRuneInString(rest)
			if rest == "" || !isWordRune(r) {
				return true
			}
		}
	}
	return false
}

func (m *Merger) startsWithJoinWord(text string) bool {
	for _, c := range companyMarkers {
		if strings.Contains(text, c) {
			return false
		}
	}
	for _, w := range m.config.JoinWords {
		if rest, ok := strings.CutPrefix(text, w); ok {
			r, _ := utf8.DecodeRuneInString(rest)
			if rest == "" || !isWordRune(r) {
				return true
			}
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// joinText appends a wrapped line to entry text. A word split by a hyphen
// is rejoined without the hyphen when it continues in lowercase; compounds
// such as "Bern-Bümpliz" keep it.
func joinText(text, next string) string {
	if text == "" {
		return next
	}
	if strings.HasSuffix(text, "-") && len(text) > 1 {
		r, _ := utf8.DecodeRuneInString(next)
		if unicode.IsLower(r) {
			return strings.TrimSuffix(text, "-") + next
		}
		return text + next
	}
	return text + " " + next
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
