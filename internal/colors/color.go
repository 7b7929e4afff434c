package colors

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Value is a normalized sRGB colour with 8-bit channels and a fractional alpha.
//
// Every syntax the parser accepts (hex, rgb(), hsl(), hwb(), named colours,
// variables) produces a Value, so downstream code never sees the input form.
type Value struct {
	R uint8   `json:"r"` // Red component (0-255)
	G uint8   `json:"g"` // Green component (0-255)
	B uint8   `json:"b"` // Blue component (0-255)
	A float64 `json:"a"` // Alpha: 0 = transparent, 1 = opaque
}

// HSLColor represents a colour in HSL (Hue, Saturation, Lightness) colour space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Opaque reports whether the colour has full alpha.
func (v Value) Opaque() bool {
	return v.A >= 1
}

// Hex returns "#rrggbb", or "#rrggbbaa" when the colour is not opaque.
func (v Value) Hex() string {
	if v.Opaque() {
		return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", v.R, v.G, v.B, alpha8(v.A))
}

// CSS returns the colour in rgb() notation, or rgba() when it is not opaque.
// The output is what a minihtml renderer accepts as a background colour.
func (v Value) CSS() string {
	if v.Opaque() {
		return fmt.Sprintf("rgb(%d, %d, %d)", v.R, v.G, v.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", v.R, v.G, v.B, strconv.FormatFloat(v.A, 'f', -1, 64))
}

// NRGBA converts the colour to a non-premultiplied image/color value.
func (v Value) NRGBA() color.NRGBA {
	return color.NRGBA{R: v.R, G: v.G, B: v.B, A: alpha8(v.A)}
}

// HSL returns the colour in HSL colour space with integer components.
func (v Value) HSL() HSLColor {
	h, s, l := v.colorful().Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))}
}

func (v Value) colorful() colorful.Color {
	return colorful.Color{R: float64(v.R) / 255, G: float64(v.G) / 255, B: float64(v.B) / 255}
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(clamp(a, 0, 1) * 255))
}

// fromColorful converts a go-colorful colour to a Value, clamping out-of-gamut results.
func fromColorful(c colorful.Color, alpha float64) Value {
	r, g, b := c.Clamped().RGB255()
	return Value{R: r, G: g, B: b, A: alpha}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
