package pipeline

import (
	"context"

	"github.com/jackzampolin/adrbuch/internal/merge"
	"github.com/jackzampolin/adrbuch/internal/ocr"
	"github.com/jackzampolin/adrbuch/internal/order"
	"github.com/jackzampolin/adrbuch/internal/sanitize"
	"github.com/jackzampolin/adrbuch/internal/segment"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// Stage names.
const (
	StageIngest   = "ingest"
	StageSegment  = "segment"
	StageOrder    = "order"
	StageMerge    = "merge"
	StageSanitize = "sanitize"
)

// Evicter drops cached page data once a page is done.
type Evicter interface {
	Evict(pageID int)
}

// StageDeps are the shared, read-only components the stages use.
type StageDeps struct {
	Source    *ocr.Source
	Clean     ocr.CleanConfig
	Resolver  *segment.Resolver
	Orderer   *order.Orderer
	Merger    *merge.Merger
	Sanitizer *sanitize.Sanitizer
	// Images, if set, is evicted after segmentation.
	Images Evicter
}

// DefaultStages builds the standard stages.
func DefaultStages(deps StageDeps) []Stage {
	return []Stage{
		&ingestStage{source: deps.Source, clean: deps.Clean, sanitizer: deps.Sanitizer},
		&segmentStage{resolver: deps.Resolver, images: deps.Images},
		&orderStage{orderer: deps.Orderer},
		&mergeStage{merger: deps.Merger},
		&sanitizeStage{sanitizer: deps.Sanitizer},
	}
}

type ingestStage struct {
	source    *ocr.Source
	clean     ocr.CleanConfig
	sanitizer *sanitize.Sanitizer
}

func (s *ingestStage) Name() string           { return StageIngest }
func (s *ingestStage) Dependencies() []string { return nil }
func (s *ingestStage) Description() string {
	return "read OCR lines, drop malformed boxes and noise, normalize text"
}

func (s *ingestStage) Run(ctx context.Context, page *PageState) error {
	raw, err := s.source.ReadPage(ctx, page.Ref.PageID)
	if err != nil {
		return err
	}
	valid, errs := ocr.Validate(raw)
	for _, err := range errs {
		page.Issue(err)
	}
	page.Boxes = s.sanitizer.FilterBoxes(ocr.Clean(valid, page.Ref.Date, s.clean))
	return nil
}

type segmentStage struct {
	resolver *segment.Resolver
	images   Evicter
}

func (s *segmentStage) Name() string           { return StageSegment }
func (s *segmentStage) Dependencies() []string { return []string{StageIngest} }
func (s *segmentStage) Description() string    { return "find the column divider and split columns" }

func (s *segmentStage) Run(_ context.Context, page *PageState) error {
	if s.images != nil {
		defer s.images.Evict(page.Ref.PageID)
	}
	divider, err := s.resolver.Resolve(page.Ref.PageID, page.Boxes)
	if err != nil {
		page.Issue(err)
	}
	page.Layout = segment.Split(page.Boxes, divider)
	return nil
}

type orderStage struct {
	orderer *order.Orderer
}

func (s *orderStage) Name() string           { return StageOrder }
func (s *orderStage) Dependencies() []string { return []string{StageSegment} }
func (s *orderStage) Description() string    { return "put the lines of each column in reading order" }

func (s *orderStage) Run(_ context.Context, page *PageState) error {
	page.Columns = make([][]types.TextBox, len(page.Layout.Columns))
	for i, col := range page.Layout.Columns {
		page.Columns[i] = s.orderer.Order(col)
	}
	return nil
}

type mergeStage struct {
	merger *merge.Merger
}

func (s *mergeStage) Name() string           { return StageMerge }
func (s *mergeStage) Dependencies() []string { return []string{StageOrder} }
func (s *mergeStage) Description() string    { return "join wrapped lines into entries" }

func (s *mergeStage) Run(_ context.Context, page *PageState) error {
	entries := []types.Entry{}
	for _, col := range page.Columns {
		entries = append(entries, s.merger.Merge(col)...)
	}
	page.Entries = entries
	return nil
}

type sanitizeStage struct {
	sanitizer *sanitize.Sanitizer
}

func (s *sanitizeStage) Name() string           { return StageSanitize }
func (s *sanitizeStage) Dependencies() []string { return []string{StageMerge} }
func (s *sanitizeStage) Description() string    { return "apply replacement rules to entry text" }

func (s *sanitizeStage) Run(_ context.Context, page *PageState) error {
	page.Entries = s.sanitizer.Entries(page.Entries)
	return nil
}
