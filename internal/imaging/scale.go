package imaging

import (
	"fmt"
	"math"
)

// Popup image width limits in layout pixels, before the device scale factor.
const (
	MinPopupImageWidth = 100
	MaxPopupImageWidth = 200
)

// ScaleForPopup returns the display size of an image in the popup.
//
// The result preserves the aspect ratio and is at least MinPopupImageWidth
// wide. Neither side exceeds MaxPopupImageWidth unless that contradicts the
// minimum width. Both sides are multiplied by deviceScale. An unknown size
// (width or height <= 0) is shown as a square of the minimum width.
func ScaleForPopup(width, height int, deviceScale float64) (int, int) {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	if width <= 0 || height <= 0 {
		side := int(MinPopupImageWidth * deviceScale)
		return side, side
	}
	w, h := float64(width), float64(height)
	imageScale := math.Min(MaxPopupImageWidth/math.Max(w, h), 1)
	correction := math.Max(MinPopupImageWidth/imageScale/w, 1)
	factor := imageScale * deviceScale * correction
	return int(factor * w), int(factor * h)
}

// SizeLabel describes the pixel size of an image for the popup caption.
func SizeLabel(width, height int) string {
	if width <= 0 || height <= 0 {
		return "unknown size"
	}
	return fmt.Sprintf("%d × %d pixels", width, height)
}
