package imaging

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// ImageInfo contains metadata read from an encoded image header.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the encoding detected from the content, not from a file name.
	Format Format `json:"-"`

	// HasAlpha indicates whether the colour model can carry transparency.
	HasAlpha bool `json:"has_alpha"`
}

var decoderFormats = map[string]Format{
	"png":  PNG,
	"jpeg": JPEG,
	"gif":  GIF,
	"bmp":  BMP,
	"webp": WebP,
}

// Inspect reads the image header in data and returns its dimensions and format.
//
// Only the header is decoded. PNG, JPEG, GIF, BMP and WebP are recognized;
// anything else, including SVG and AVIF, is a decode failure.
func Inspect(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, failure.New(failure.KindDecode, "empty image data")
	}
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Wrap(failure.KindDecode, "read image header", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, failure.New(failure.KindDecode, "invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	return &ImageInfo{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   decoderFormats[name],
		HasAlpha: modelHasAlpha(cfg.ColorModel),
	}, nil
}

// modelHasAlpha reports whether pixels of the given colour model may be translucent.
func modelHasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model, color.NYCbCrAModel:
		return true
	}
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
