package scan

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/jackzampolin/adrbuch/internal/types"
)

// CropEntries cuts each box out of a page scan and saves it as
// <dir>/<pageID>_<index>.png. Boxes are grown by pad pixels and clipped to
// the image. It returns the written paths in box order.
func CropEntries(img image.Image, pageID int, boxes []types.Box, pad int, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create crop directory: %w", err)
	}

	bounds := img.Bounds()
	paths := make([]string, 0, len(boxes))
	for i, b := range boxes {
		rect := image.Rect(b.X-pad, b.Y-pad, b.Right()+pad, b.Bottom()+pad).Intersect(bounds)
		if rect.Empty() {
			return paths, fmt.Errorf("box %s of page %d lies outside the scan %v", b, pageID, bounds)
		}

		cropped := imaging.Crop(img, rect)
		path := filepath.Join(dir, fmt.Sprintf("%d_%03d.png", pageID, i))
		if err := imaging.Save(cropped, path); err != nil {
			return paths, fmt.Errorf("failed to save crop: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
