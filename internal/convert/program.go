package convert

import (
	"strings"

	"github.com/ironsheep/quick-view-mcp/internal/imaging"
)

// Program is an external converter that rasterizes an image to PNG.
type Program string

// Known converter programs. None disables conversion for a format.
const (
	None     Program = ""
	Inkscape Program = "inkscape"
	Magick   Program = "magick"
	Dwebp    Program = "dwebp"
)

// ParseProgram normalizes a converter setting. Unknown names are None.
func ParseProgram(s string) Program {
	switch p := Program(strings.ToLower(strings.TrimSpace(s))); p {
	case Inkscape, Magick, Dwebp:
		return p
	}
	return None
}

// compatible lists which programs can read which formats.
var compatible = map[imaging.Format][]Program{
	imaging.SVG:  {Inkscape, Magick},
	imaging.WebP: {Dwebp, Magick},
	imaging.AVIF: {Magick},
}

// Supports reports whether p can convert format f.
func (p Program) Supports(f imaging.Format) bool {
	for _, c := range compatible[f] {
		if c == p {
			return true
		}
	}
	return false
}

// Spec pairs a format with the program selected to convert it.
type Spec struct {
	Format  imaging.Format
	Program Program
}

// Args returns the command line for converting the source to PNG on stdout.
// An empty path means the source is piped through stdin.
// With background set, ImageMagick composites a checkerboard behind
// transparent areas.
func (s Spec) Args(path string, background bool) []string {
	switch s.Program {
	case Inkscape:
		if path == "" {
			return []string{"--pipe", "--export-type=png"}
		}
		return []string{"--export-type=png", "--export-filename=-", path}
	case Dwebp:
		if path == "" {
			return []string{"-o", "-", "--", "-"}
		}
		return []string{"-o", "-", "--", path}
	case Magick:
		input := path
		if input == "" {
			input = strings.ToLower(s.Format.String()) + ":-"
		}
		if background {
			return []string{"composite", "-compose", "dst-over", "-tile", "pattern:checkerboard", "-background", "transparent", input, "png:-"}
		}
		return []string{"-background", "transparent", input, "png:-"}
	}
	return nil
}
