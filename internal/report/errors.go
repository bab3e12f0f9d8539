package report

import "errors"

// Sentinel errors for the conversion pipeline.
var (
	// ErrMissingInput is returned when the OCR file of a listed page is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrMalformedBox is returned for a bounding box with non-positive width or height.
	ErrMalformedBox = errors.New("malformed box")

	// ErrAmbiguousDivider is reported when no column gap is found and no override exists.
	ErrAmbiguousDivider = errors.New("ambiguous divider")

	// ErrNoColumnGap is reported when a page with text shows no vertical gap
	// at all and is read as a single column.
	ErrNoColumnGap = errors.New("no column gap")

	// ErrUnknownReplacementPattern is reported for rules that never matched during a run.
	ErrUnknownReplacementPattern = errors.New("unknown replacement pattern")

	// ErrVolumeNotFound is returned when a selected volume date is not in the chapter list.
	ErrVolumeNotFound = errors.New("volume not found")
)

// Kind classifies an error into one of the report kinds.
// Unclassified errors are reported as KindPageFailed.
func Kind(err error) IssueKind {
	switch {
	case errors.Is(err, ErrMissingInput):
		return KindMissingInput
	case errors.Is(err, ErrMalformedBox):
		return KindMalformedBox
	case errors.Is(err, ErrAmbiguousDivider):
		return KindAmbiguousDivider
	case errors.Is(err, ErrNoColumnGap):
		return KindSingleColumn
	case errors.Is(err, ErrUnknownReplacementPattern):
		return KindUnknownReplacementPattern
	case errors.Is(err, ErrVolumeNotFound):
		return KindVolumeNotFound
	default:
		return KindPageFailed
	}
}
