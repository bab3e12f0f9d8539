package sanitize

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

const regexpPrefix = "re:"

// Blackhole is an immutable set of noise lines.
type Blackhole struct {
	exact    map[string]struct{}
	patterns []*regexp.Regexp
}

// DefaultBlackhole returns the built-in noise line set.
func DefaultBlackhole() (*Blackhole, error) {
	data, err := defaultsFS.ReadFile("defaults/blackhole.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read default blackhole: %w", err)
	}
	return ParseBlackhole(bytes.NewReader(data))
}

// LoadBlackhole reads a blackhole file. An empty path selects the built-in set.
func LoadBlackhole(path string) (*Blackhole, error) {
	if path == "" {
		return DefaultBlackhole()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blackhole: %w", err)
	}
	defer f.Close()
	b, err := ParseBlackhole(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// ParseBlackhole reads one line per row. Empty rows and rows starting with
// '#' are ignored; rows starting with "re:" are regular expressions.
func ParseBlackhole(r io.Reader) (*Blackhole, error) {
	b := &Blackhole{exact: make(map[string]struct{})}
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if expr, ok := strings.CutPrefix(line, regexpPrefix); ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			b.patterns = append(b.patterns, re)
			continue
		}
		b.exact[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBlackhole builds a set from exact lines.
func NewBlackhole(lines ...string) *Blackhole {
	b := &Blackhole{exact: make(map[string]struct{}, len(lines))}
	for _, l := range lines {
		b.exact[strings.TrimSpace(l)] = struct{}{}
	}
	return b
}

// Len returns the number of exact lines and patterns.
func (b *Blackhole) Len() int {
	return len(b.exact) + len(b.patterns)
}

// Match reports whether line is noise.
func (b *Blackhole) Match(line string) bool {
	line = strings.TrimSpace(line)
	if _, ok := b.exact[line]; ok {
		return true
	}
	for _, re := range b.patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Filter returns the lines that are not noise.
func (b *Blackhole) Filter(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !b.Match(l) {
			out = append(out, l)
		}
	}
	return out
}
