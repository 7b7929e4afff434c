package imaging

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// MaxPopupImageSide is the largest side length handed to the renderer.
const MaxPopupImageSide = 1024

// FitResult contains an image that fits inside the popup limits.
type FitResult struct {
	Data    []byte `json:"-"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Resized bool   `json:"resized"`

	// SourceWidth and SourceHeight are the dimensions before resizing.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
}

// FitPopup downscales an encoded raster image so neither side exceeds maxSide.
//
// Images already within the limit are returned unchanged, without decoding the
// pixel data. Larger images are resized with a Lanczos filter and re-encoded
// as PNG. Aspect ratio is preserved.
func FitPopup(data []byte, maxSide int) (*FitResult, error) {
	if maxSide <= 0 {
		maxSide = MaxPopupImageSide
	}
	info, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	if info.Width <= maxSide && info.Height <= maxSide {
		return &FitResult{
			Data:         data,
			Width:        info.Width,
			Height:       info.Height,
			SourceWidth:  info.Width,
			SourceHeight: info.Height,
		}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Wrap(failure.KindDecode, "decode image", err)
	}
	fitted := imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.PNG); err != nil {
		return nil, failure.Wrap(failure.KindDecode, "encode fitted image", err)
	}
	return &FitResult{
		Data:    buf.Bytes(),
		Width:   fitted.Bounds().Dx(),
		Height:  fitted.Bounds().Dy(),
		Resized: true,

		SourceWidth:  info.Width,
		SourceHeight: info.Height,
	}, nil
}
