package segment

import (
	"image"

	"github.com/jackzampolin/adrbuch/internal/scan"
	"github.com/jackzampolin/adrbuch/internal/types"
)

// ImageSource provides page scans.
type ImageSource interface {
	Has(pageID int) bool
	Load(pageID int) (image.Image, error)
}

// ImageDetector finds the printed column rule on the page scan.
// Pages without a cached scan are left to the next detector.
type ImageDetector struct {
	images ImageSource
	config scan.DividerConfig
}

// NewImageDetector creates an image detector over images.
func NewImageDetector(images ImageSource, config scan.DividerConfig) *ImageDetector {
	return &ImageDetector{images: images, config: config}
}

// Source implements Detector.
func (d *ImageDetector) Source() types.DividerSource { return types.DividerImage }

// Detect implements Detector.
func (d *ImageDetector) Detect(pageID int, _ []types.TextBox) (int, bool, error) {
	if !d.images.Has(pageID) {
		return 0, false, nil
	}
	img, err := d.images.Load(pageID)
	if err != nil {
		return 0, false, err
	}
	x, ok := scan.DetectDivider(img, d.config)
	return x, ok, nil
}
