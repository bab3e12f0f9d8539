package pipeline

import (
	"context"

	"github.com/jackzampolin/adrbuch/internal/segment"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Stage is one step of page processing.
// Each stage reads the fields of PageState set by its dependencies and sets
// its own; it never modifies what earlier stages produced.
type Stage interface {
	Name() string           // e.g., "segment", "merge"
	Dependencies() []string // Stages that must run first
	Description() string

	// Run processes one page. An error fails the page; recoverable problems
	// go to PageState.Issues.
	Run(ctx context.Context, page *PageState) error
}

// PageState is the snapshot of one page as it moves through the stages.
type PageState struct {
	Ref types.PageRef

	// Boxes are the cleaned OCR lines (ingest).
	Boxes []types.TextBox
	// Layout splits Boxes into columns (segment).
	Layout segment.Layout
	// Columns are the layout's columns in reading order (order).
	Columns [][]types.TextBox
	// Entries of all columns, left column first (merge, sanitize).
	Entries []types.Entry

	// Issues are non-fatal problems found while processing the page.
	Issues []error
}

// Issue records a non-fatal problem.
func (p *PageState) Issue(err error) {
	p.Issues = append(p.Issues, err)
}
