package scan

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/adrbuch/internal/types"
)

// page draws a white page with an optional black vertical rule.
func page(w, h, ruleX, ruleWidth int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if ruleWidth > 0 && x >= ruleX && x < ruleX+ruleWidth {
				c = color.NRGBA{A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDetectDivider(t *testing.T) {
	cfg := DefaultDividerConfig()

	t.Run("single pixel rule", func(t *testing.T) {
		x, ok := DetectDivider(page(200, 200, 104, 1), cfg)
		if !ok || x != 104 {
			t.Errorf("DetectDivider() = %d, %v; want 104, true", x, ok)
		}
	})

	t.Run("thick rule", func(t *testing.T) {
		x, ok := DetectDivider(page(200, 200, 96, 5), cfg)
		if !ok || x != 98 {
			t.Errorf("DetectDivider() = %d, %v; want 98, true", x, ok)
		}
	})

	t.Run("broken rule", func(t *testing.T) {
		img := page(200, 200, 100, 1)
		for y := 50; y < 200; y += 20 {
			img.SetNRGBA(100, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
		x, ok := DetectDivider(img, cfg)
		if !ok || x != 100 {
			t.Errorf("DetectDivider() = %d, %v; want 100, true", x, ok)
		}
	})

	t.Run("blank page", func(t *testing.T) {
		if _, ok := DetectDivider(page(200, 200, 0, 0), cfg); ok {
			t.Error("expected no divider on a blank page")
		}
	})

	t.Run("rule outside band", func(t *testing.T) {
		if _, ok := DetectDivider(page(200, 200, 10, 2), cfg); ok {
			t.Error("expected margin rule to be ignored")
		}
	})
}

func TestCropEntries(t *testing.T) {
	dir := t.TempDir()
	img := page(200, 100, 0, 0)
	boxes := []types.Box{
		{X: 10, Y: 10, Width: 50, Height: 20},
		{X: 180, Y: 90, Width: 50, Height: 50},
	}
	paths, err := CropEntries(img, 7, boxes, 2, dir)
	if err != nil {
		t.Fatalf("CropEntries() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if want := filepath.Join(dir, "7_000.png"); paths[0] != want {
		t.Errorf("paths[0] = %q, want %q", paths[0], want)
	}

	f, err := os.Open(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cropped, _, err := image.Decode(f)
	if err != nil {
		t.Fatalf("decode crop: %v", err)
	}
	// Second box is clipped at the image edge: x 178..200, y 88..100.
	if got := cropped.Bounds().Size(); got != image.Pt(22, 12) {
		t.Errorf("clipped crop size = %v, want (22,12)", got)
	}
}

func TestCropEntries_OutsideScan(t *testing.T) {
	img := page(50, 50, 0, 0)
	_, err := CropEntries(img, 1, []types.Box{{X: 500, Y: 500, Width: 10, Height: 10}}, 0, t.TempDir())
	if err == nil {
		t.Error("expected error for box outside scan")
	}
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir)
	if cache.Has(1) {
		t.Fatal("empty cache reports scan")
	}
	if _, err := cache.Load(1); err == nil {
		t.Fatal("expected error loading missing scan")
	}

	writeJPEG(t, cache.Path(1), page(40, 30, 0, 0))
	if !cache.Has(1) {
		t.Fatal("Has() = false after writing scan")
	}
	img, err := cache.Load(1)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 40 {
		t.Errorf("width = %d, want 40", img.Bounds().Dx())
	}

	// Cached copy survives removal from disk until evicted.
	if err := os.Remove(cache.Path(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(1); err != nil {
		t.Errorf("Load() after removal error = %v", err)
	}
	cache.Evict(1)
	if _, err := cache.Load(1); err == nil {
		t.Error("expected error after eviction")
	}
}

func TestFetcher(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/100":
			w.Write([]byte("jpeg-bytes"))
		case "/200":
			// Fails once, then succeeds.
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte("late-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache := NewCache(t.TempDir())
	f := NewFetcher(cache, FetcherConfig{
		BaseURL:  srv.URL,
		Attempts: 3,
		Delay:    time.Millisecond,
	})
	ctx := context.Background()

	downloaded, err := f.Fetch(ctx, 100)
	if err != nil || !downloaded {
		t.Fatalf("Fetch(100) = %v, %v", downloaded, err)
	}
	data, err := os.ReadFile(cache.Path(100))
	if err != nil || string(data) != "jpeg-bytes" {
		t.Errorf("cached scan = %q, %v", data, err)
	}

	downloaded, err = f.Fetch(ctx, 100)
	if err != nil || downloaded {
		t.Errorf("second Fetch(100) = %v, %v; want cached", downloaded, err)
	}

	if _, err := f.Fetch(ctx, 200); err != nil {
		t.Errorf("Fetch(200) with one transient failure: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times for page 200, want 2", calls.Load())
	}

	if _, err := f.Fetch(ctx, 300); err == nil {
		t.Error("expected error for missing scan")
	}
	if cache.Has(300) {
		t.Error("failed download left a file behind")
	}
}
