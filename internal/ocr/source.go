package ocr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Source reads OCR results from a directory of per-page files.
type Source struct {
	dir string
}

// NewSource creates a source rooted at dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the OCR directory.
func (s *Source) Dir() string {
	return s.dir
}

// ReadPage returns the raw line boxes of a page.
// It looks for <id>.hocr first, then <id>.json. If neither exists the
// error wraps report.ErrMissingInput.
func (s *Source) ReadPage(ctx context.Context, pageID int) ([]types.TextBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hocrPath := filepath.Join(s.dir, fmt.Sprintf("%d.hocr", pageID))
	f, err := os.Open(hocrPath)
	if err == nil {
		defer f.Close()
		boxes, err := ParseHOCR(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", hocrPath, err)
		}
		return boxes, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to open OCR file: %w", err)
	}

	jsonPath := filepath.Join(s.dir, fmt.Sprintf("%d.json", pageID))
	f, err = os.Open(jsonPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("page %d: no OCR file in %s: %w", pageID, s.dir, report.ErrMissingInput)
		}
		return nil, fmt.Errorf("failed to open OCR file: %w", err)
	}
	defer f.Close()
	boxes, err := ParseJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", jsonPath, err)
	}
	return boxes, nil
}
