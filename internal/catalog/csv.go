package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// record is one CSV row addressed by header name.
type record struct {
	line   int
	fields map[string]string
}

func (r record) get(name string) string {
	return strings.TrimSpace(r.fields[name])
}

func (r record) int(name string) (int, error) {
	v := r.get(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return n, nil
}

// readCSV reads a headed CSV file and checks that all required columns exist.
func readCSV(path string, comma rune, required ...string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCSV(f, path, comma, required...)
}

func parseCSV(r io.Reader, name string, comma rune, required ...string) ([]record, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", name)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	for _, col := range required {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}

	var records []record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				fields[h] = row[i]
			}
		}
		records = append(records, record{line: line, fields: fields})
	}
	return records, nil
}

// readLines returns the non-empty, non-comment lines of a plain text file.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
