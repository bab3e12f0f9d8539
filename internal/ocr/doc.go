// Package ocr reads OCR results for scanned pages and turns them into
// TextBoxes.
//
// Two input formats are understood, both keyed by page ID inside one
// directory:
//
//   - <id>.hocr: hOCR (HTML) as returned by the OCR service; every element
//     whose class is a line class (ocr_line, ocr_header, ocr_caption,
//     ocr_textfloat) becomes one TextBox.
//   - <id>.json: {"page_id": 1, "lines": [{"text", "x", "y", "width", "height"}]},
//     validated against an embedded JSON schema.
//
// Running OCR itself is not part of this package; the files are produced
// offline.
package ocr
