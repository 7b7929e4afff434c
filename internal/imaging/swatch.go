package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ironsheep/quick-view-mcp/internal/colors"
)

// Swatch geometry: a SwatchSize square made of SwatchCell checkerboard cells.
const (
	SwatchSize = 40
	SwatchCell = 5
)

// Theme is the brightness class of the editor background.
type Theme int

const (
	Light Theme = iota
	Dark
)

func (t Theme) String() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

// Checkerboard grey levels per theme.
var (
	checkerLight = map[Theme]uint8{Light: 255, Dark: 51}
	checkerDark  = map[Theme]uint8{Light: 204, Dark: 0}
)

// ThemeOf classifies a background colour as light or dark by its HSL lightness.
func ThemeOf(background colors.Value) Theme {
	if background.HSL().L < 50 {
		return Dark
	}
	return Light
}

type swatchKey struct {
	color colors.Value
	theme Theme
}

var swatchCache, _ = lru.New[swatchKey, []byte](128)

// Swatch renders a translucent colour as a PNG checkerboard so its alpha stays
// visible on any popup background.
//
// The colour is composited over a SwatchSize square of alternating light and
// dark cells chosen for the theme. Results are memoized; callers must not
// modify the returned slice.
func Swatch(c colors.Value, theme Theme) ([]byte, error) {
	key := swatchKey{color: c, theme: theme}
	if data, ok := swatchCache.Get(key); ok {
		return data, nil
	}

	bg := checkerboard(checkerLight[theme], checkerDark[theme])
	opaque := c.NRGBA()
	opaque.A = 255
	fg := imaging.New(SwatchSize, SwatchSize, opaque)
	out := imaging.Overlay(bg, fg, image.Pt(0, 0), c.A)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode swatch: %w", err)
	}
	data := buf.Bytes()
	swatchCache.Add(key, data)
	return data, nil
}

// checkerboard builds an opaque SwatchSize square whose top-left cell is dark.
func checkerboard(light, dark uint8) *image.NRGBA {
	board := imaging.New(SwatchSize, SwatchSize, color.NRGBA{R: light, G: light, B: light, A: 255})
	tile := imaging.New(SwatchCell, SwatchCell, color.NRGBA{R: dark, G: dark, B: dark, A: 255})
	for y := 0; y < SwatchSize; y += SwatchCell {
		for x := 0; x < SwatchSize; x += SwatchCell {
			if (x/SwatchCell+y/SwatchCell)%2 == 0 {
				board = imaging.Paste(board, tile, image.Pt(x, y))
			}
		}
	}
	return board
}
