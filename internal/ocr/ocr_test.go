package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/types"
)

const sampleHOCR = `<!DOCTYPE html>
<html><body>
<div class="ocr_page" title="bbox 0 0 2000 3000">
 <div class="ocr_carea">
  <p class="ocr_par">
   <span class="ocr_line" id="line_1" title="bbox 100 300 700 340; baseline 0 -8">
    <span class="ocrx_word" title="bbox 100 300 300 340">Müller</span>
    <span class="ocrx_word" title="bbox 320 300 500 340">Hans,</span>
    <span class="ocrx_word" title="bbox 520 300 700 340">Schreiner</span>
   </span>
   <span class="ocr_line" id="line_2" title="bbox 140 345 500 385">
    <span class="ocrx_word" title="bbox 140 345 500 385">Marktg.</span>
    <span class="ocrx_word" title="bbox 140 345 500 385">12</span>
   </span>
   <span class="ocr_header" id="line_3" title="bbox 900 120 1100 160">Bern</span>
  </p>
 </div>
</div>
</body></html>`

func TestParseHOCR(t *testing.T) {
	got, err := ParseHOCR(strings.NewReader(sampleHOCR))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}
	want := []types.TextBox{
		{Box: types.Box{X: 100, Y: 300, Width: 600, Height: 40}, Text: "Müller Hans, Schreiner"},
		{Box: types.Box{X: 140, Y: 345, Width: 360, Height: 40}, Text: "Marktg. 12"},
		{Box: types.Box{X: 900, Y: 120, Width: 200, Height: 40}, Text: "Bern"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseHOCR() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHOCR_BadBBox(t *testing.T) {
	doc := `<span class="ocr_line" id="l1" title="bbox 1 2 three 4">x</span>`
	if _, err := ParseHOCR(strings.NewReader(doc)); err == nil {
		t.Error("expected error for non-numeric bbox")
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"page_id": 29210065, "lines": [
		{"text": "Bähler Fritz", "x": 10, "y": 300, "width": 400, "height": 30}
	]}`
	got, err := ParseJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	want := []types.TextBox{{Box: types.Box{X: 10, Y: 300, Width: 400, Height: 30}, Text: "Bähler Fritz"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON_SchemaViolation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing lines", `{"page_id": 1}`},
		{"missing height", `{"lines": [{"text": "a", "x": 1, "y": 2, "width": 3}]}`},
		{"fractional x", `{"lines": [{"text": "a", "x": 1.5, "y": 2, "width": 3, "height": 4}]}`},
		{"not json", `{"lines": [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseJSON(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSource_ReadPage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1.hocr"), []byte(sampleHOCR), 0o644); err != nil {
		t.Fatal(err)
	}
	jsonDoc := `{"lines": [{"text": "json", "x": 1, "y": 2, "width": 3, "height": 4}]}`
	if err := os.WriteFile(filepath.Join(dir, "2.json"), []byte(jsonDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewSource(dir)
	ctx := context.Background()

	boxes, err := src.ReadPage(ctx, 1)
	if err != nil {
		t.Fatalf("ReadPage(1) error = %v", err)
	}
	if len(boxes) != 3 {
		t.Errorf("ReadPage(1) returned %d boxes, want 3", len(boxes))
	}

	boxes, err = src.ReadPage(ctx, 2)
	if err != nil {
		t.Fatalf("ReadPage(2) error = %v", err)
	}
	if len(boxes) != 1 || boxes[0].Text != "json" {
		t.Errorf("ReadPage(2) = %+v", boxes)
	}

	_, err = src.ReadPage(ctx, 3)
	if !errors.Is(err, report.ErrMissingInput) {
		t.Errorf("ReadPage(3) error = %v, want ErrMissingInput", err)
	}
}

func TestValidate(t *testing.T) {
	in := []types.TextBox{
		{Box: types.Box{X: 1, Y: 1, Width: 10, Height: 10}, Text: "ok"},
		{Box: types.Box{X: 1, Y: 1, Width: 0, Height: 10}, Text: "flat"},
		{Box: types.Box{X: 1, Y: 1, Width: 10, Height: -3}, Text: "negative"},
		{Box: types.Box{X: -5, Y: 1, Width: 10, Height: 10}, Text: "left of page"},
		{Box: types.Box{X: 1 << 50, Y: 1, Width: 10, Height: 10}, Text: "stray"},
		{Box: types.Box{X: 1, Y: MaxCoord - 5, Width: 10, Height: 10}, Text: "below page"},
		{Box: types.Box{X: MaxCoord - 10, Y: 1, Width: 10, Height: 10}, Text: "edge"},
	}
	valid, errs := Validate(in)
	if len(valid) != 2 || valid[0].Text != "ok" || valid[1].Text != "edge" {
		t.Errorf("valid = %+v", valid)
	}
	if len(errs) != 5 {
		t.Fatalf("got %d errors, want 5", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, report.ErrMalformedBox) {
			t.Errorf("error %v does not wrap ErrMalformedBox", err)
		}
	}
}

func TestClean(t *testing.T) {
	cfg := DefaultCleanConfig()
	line := func(y int, text string) types.TextBox {
		return types.TextBox{Box: types.Box{X: 100, Y: y, Width: 150, Height: 30}, Text: text}
	}

	tests := []struct {
		name string
		date string
		in   []types.TextBox
		want []string
	}{
		{
			name: "header above cut-off dropped",
			date: "1870-01-01",
			in:   []types.TextBox{line(100, "Bern"), line(300, "Aebi Jak.")},
			want: []string{"Aebi Jak."},
		},
		{
			name: "lone dash dropped",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, " - "), line(340, "Aebi")},
			want: []string{"Aebi"},
		},
		{
			name: "dash spacing",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, "-Fritz, Wirt")},
			want: []string{"- Fritz, Wirt"},
		},
		{
			name: "long s and apostrophe",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, "Haſler's Erben")},
			want: []string{"Hasler’s Erben"},
		},
		{
			name: "period spacing",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, "Schneider,Marktg.12")},
			want: []string{"Schneider,Marktg.12"},
		},
		{
			name: "period before letter",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, "Jak.Schreiner")},
			want: []string{"Jak. Schreiner"},
		},
		{
			name: "phone numbers in phone era",
			date: "1900-12-15",
			in:   []types.TextBox{line(300, "Kohler Emil, Marktg. 5 # 1234"), line(340, "Wyss, Bundesg. 3 4567")},
			want: []string{"Kohler Emil, Marktg. 5 ↯1234", "Wyss, Bundesg. 3 ↯4567"},
		},
		{
			name: "hash outside phone era",
			date: "1870-01-01",
			in:   []types.TextBox{line(300, "Kohler # 1234")},
			want: []string{"Kohler 1234"},
		},
		{
			name: "bracketed number untouched",
			date: "1900-12-15",
			in:   []types.TextBox{line(300, "Bern [1234]")},
			want: []string{"Bern [1234]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Clean(tt.in, tt.date, cfg)
			got := make([]string, len(out))
			for i, b := range out {
				got[i] = b.Text
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Clean() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClean_SplitGreedyLine(t *testing.T) {
	in := []types.TextBox{{
		Box:  types.Box{X: 100, Y: 400, Width: 600, Height: 30},
		Text: "Aebi Jak., Marktg. 3 | Affolter Hans, Postg. 7",
	}}
	got := Clean(in, "1870-01-01", DefaultCleanConfig())
	want := []types.TextBox{
		{Box: types.Box{X: 100, Y: 400, Width: 300, Height: 30}, Text: "Aebi Jak., Marktg. 3"},
		{Box: types.Box{X: 400, Y: 400, Width: 300, Height: 30}, Text: "Affolter Hans, Postg. 7"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clean() mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	in := []types.TextBox{{Box: types.Box{X: 1, Y: 300, Width: 10, Height: 10}, Text: "-Foo"}}
	Clean(in, "1870-01-01", DefaultCleanConfig())
	if in[0].Text != "-Foo" {
		t.Errorf("input mutated: %q", in[0].Text)
	}
}
