package segment

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/types"
)

func tb(x, y, w int, text string) types.TextBox {
	return types.TextBox{Box: types.Box{X: x, Y: y, Width: w, Height: 30}, Text: text}
}

// twoColumns lays out a page with columns 100..460 and 500..860, so the
// gap heuristic places the divider at 480.
func twoColumns() []types.TextBox {
	return []types.TextBox{
		tb(100, 300, 360, "Aebi Jak., Schreiner"),
		tb(140, 340, 200, "Marktg. 3"),
		tb(100, 380, 300, "Affolter Hans"),
		tb(500, 300, 360, "Bähler Fritz, Wirt"),
		tb(540, 340, 250, "Postg. 7"),
		tb(500, 380, 320, "Balmer Anna"),
	}
}

func TestGapDetector(t *testing.T) {
	d := NewGapDetector()

	t.Run("two columns", func(t *testing.T) {
		x, ok, err := d.Detect(1, twoColumns())
		if err != nil || !ok || x != 480 {
			t.Errorf("Detect() = %d, %v, %v; want 480, true, nil", x, ok, err)
		}
	})

	t.Run("page spanning header ignored", func(t *testing.T) {
		boxes := append(twoColumns(), tb(100, 270, 760, "Adressbuch der Stadt Bern"))
		x, ok, err := d.Detect(1, boxes)
		if err != nil || !ok || x != 480 {
			t.Errorf("Detect() = %d, %v, %v; want 480, true, nil", x, ok, err)
		}
	})

	t.Run("single column", func(t *testing.T) {
		boxes := []types.TextBox{
			tb(100, 300, 360, "Aebi Jak."),
			tb(140, 340, 300, "Marktg. 3"),
			tb(100, 380, 280, "Affolter Hans"),
		}
		_, ok, err := d.Detect(1, boxes)
		if ok || !errors.Is(err, report.ErrNoColumnGap) {
			t.Errorf("Detect() = %v, %v; want ErrNoColumnGap", ok, err)
		}
		if report.Kind(err) != report.KindSingleColumn {
			t.Errorf("Kind() = %s, want %s", report.Kind(err), report.KindSingleColumn)
		}
	})

	t.Run("lone box", func(t *testing.T) {
		_, ok, err := d.Detect(1, []types.TextBox{tb(100, 300, 300, "Zwahlen Emil")})
		if err != nil || ok {
			t.Errorf("Detect() = %v, %v; want no divider and no error", ok, err)
		}
	})

	t.Run("narrow gap is ambiguous", func(t *testing.T) {
		boxes := []types.TextBox{
			tb(100, 300, 370, "Aebi Jak."),
			tb(480, 300, 380, "Bähler Fritz"),
		}
		_, ok, err := d.Detect(1, boxes)
		if ok || !errors.Is(err, report.ErrAmbiguousDivider) {
			t.Errorf("Detect() = %v, %v; want ErrAmbiguousDivider", ok, err)
		}
	})

	t.Run("far away stray box", func(t *testing.T) {
		boxes := append(twoColumns(), tb(1<<50, 300, 40, "."))
		x, ok, err := d.Detect(1, boxes)
		if err != nil || !ok || x != 480 {
			t.Errorf("Detect() = %d, %v, %v; want 480, true, nil", x, ok, err)
		}
	})

	t.Run("overlapping boxes cover the gap", func(t *testing.T) {
		boxes := append(twoColumns(), tb(300, 500, 400, "Bern-Bümpliz, Bahnhofstrasse"))
		_, ok, err := d.Detect(1, boxes)
		if ok {
			t.Errorf("Detect() = %v, %v; want no divider", ok, err)
		}
	})

	t.Run("gap near the margin is not a column break", func(t *testing.T) {
		boxes := []types.TextBox{
			tb(100, 300, 50, "12"),
			tb(200, 300, 600, "Aebi Jak., Schreiner, Marktg. 3"),
			tb(200, 340, 600, "Affolter Hans, Postg. 7"),
		}
		_, ok, err := NewGapDetectorWithConfig(GapConfig{MinGapWidth: 20, MinColumnWidth: 200}).Detect(1, boxes)
		if ok || !errors.Is(err, report.ErrNoColumnGap) {
			t.Errorf("Detect() = %v, %v; want no divider", ok, err)
		}
	})
}

// fixedDetector returns a canned result.
type fixedDetector struct {
	x     int
	ok    bool
	err   error
	calls int
}

func (d *fixedDetector) Source() types.DividerSource { return types.DividerImage }

func (d *fixedDetector) Detect(int, []types.TextBox) (int, bool, error) {
	d.calls++
	return d.x, d.ok, d.err
}

func TestResolver_OverrideWins(t *testing.T) {
	heuristic := NewGapDetector()
	if x, ok, _ := heuristic.Detect(123, twoColumns()); !ok || x != 480 {
		t.Fatalf("heuristic = %d, %v; want 480", x, ok)
	}

	spy := &fixedDetector{x: 480, ok: true}
	r := NewResolver(map[int]int{123: 512}, nil, spy, heuristic)

	got, err := r.Resolve(123, twoColumns())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := &types.Divider{X: 512, Source: types.DividerManual}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
	if spy.calls != 0 {
		t.Errorf("detector called %d times for overridden page", spy.calls)
	}

	got, err = r.Resolve(124, twoColumns())
	if err != nil || got == nil || got.X != 480 || got.Source != types.DividerImage {
		t.Errorf("Resolve(124) = %+v, %v; want image divider at 480", got, err)
	}
}

func TestResolver_DetectorOrder(t *testing.T) {
	t.Run("falls through to gap", func(t *testing.T) {
		r := NewResolver(nil, nil, &fixedDetector{}, NewGapDetector())
		got, err := r.Resolve(1, twoColumns())
		if err != nil || got == nil || got.X != 480 || got.Source != types.DividerGap {
			t.Errorf("Resolve() = %+v, %v; want gap divider at 480", got, err)
		}
	})

	t.Run("detector error skipped", func(t *testing.T) {
		r := NewResolver(nil, nil, &fixedDetector{err: errors.New("corrupt scan")}, NewGapDetector())
		got, err := r.Resolve(1, twoColumns())
		if err != nil || got == nil || got.Source != types.DividerGap {
			t.Errorf("Resolve() = %+v, %v; want gap divider", got, err)
		}
	})

	t.Run("ambiguous reported", func(t *testing.T) {
		r := NewResolver(nil, nil, NewGapDetector())
		got, err := r.Resolve(1, []types.TextBox{tb(100, 300, 370, "a"), tb(480, 300, 380, "b")})
		if got != nil || !errors.Is(err, report.ErrAmbiguousDivider) {
			t.Errorf("Resolve() = %+v, %v; want nil, ErrAmbiguousDivider", got, err)
		}
	})

	t.Run("single column noted", func(t *testing.T) {
		single := []types.TextBox{tb(100, 300, 360, "Aebi Jak."), tb(100, 340, 300, "Affolter Hans")}
		r := NewResolver(nil, nil, &fixedDetector{}, NewGapDetector())
		got, err := r.Resolve(1, single)
		if got != nil || !errors.Is(err, report.ErrNoColumnGap) {
			t.Errorf("Resolve() = %+v, %v; want nil, ErrNoColumnGap", got, err)
		}
	})

	t.Run("ambiguous outranks single column", func(t *testing.T) {
		single := []types.TextBox{tb(100, 300, 360, "Aebi Jak."), tb(100, 340, 300, "Affolter Hans")}
		r := NewResolver(nil, nil, &fixedDetector{err: report.ErrAmbiguousDivider}, NewGapDetector())
		_, err := r.Resolve(1, single)
		if !errors.Is(err, report.ErrAmbiguousDivider) {
			t.Errorf("Resolve() error = %v, want ErrAmbiguousDivider", err)
		}
	})

	t.Run("overrides copied", func(t *testing.T) {
		overrides := map[int]int{5: 100}
		r := NewResolver(overrides, nil)
		overrides[5] = 999
		got, _ := r.Resolve(5, nil)
		if got == nil || got.X != 100 {
			t.Errorf("Resolve() = %+v; want x=100", got)
		}
	})
}

type stubImages struct {
	img image.Image
}

func (s stubImages) Has(int) bool { return s.img != nil }

func (s stubImages) Load(int) (image.Image, error) { return s.img, nil }

func TestImageDetector_NoScan(t *testing.T) {
	d := NewImageDetector(stubImages{}, scan.DefaultDividerConfig())
	_, ok, err := d.Detect(1, nil)
	if ok || err != nil {
		t.Errorf("Detect() = %v, %v; want no result without scan", ok, err)
	}
}

func TestSplit(t *testing.T) {
	boxes := twoColumns()

	layout := Split(boxes, &types.Divider{X: 480, Source: types.DividerGap})
	if len(layout.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(layout.Columns))
	}
	texts := func(col []types.TextBox) []string {
		var out []string
		for _, b := range col {
			out = append(out, b.Text)
		}
		return out
	}
	if diff := cmp.Diff([]string{"Aebi Jak., Schreiner", "Marktg. 3", "Affolter Hans"}, texts(layout.Columns[0])); diff != "" {
		t.Errorf("left column (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Bähler Fritz, Wirt", "Postg. 7", "Balmer Anna"}, texts(layout.Columns[1])); diff != "" {
		t.Errorf("right column (-want +got):\n%s", diff)
	}
	if want := (types.Box{X: 100, Y: 300, Width: 760, Height: 110}); layout.Bounds != want {
		t.Errorf("Bounds = %v, want %v", layout.Bounds, want)
	}

	single := Split(boxes, nil)
	if len(single.Columns) != 1 || len(single.Columns[0]) != len(boxes) {
		t.Errorf("Split without divider = %d columns", len(single.Columns))
	}
}
