package imaging

import (
	"path"
	"strings"
)

// Format identifies an image encoding the preview pipeline knows about.
type Format int

const (
	Unsupported Format = iota
	PNG
	JPEG
	GIF
	BMP
	SVG
	WebP
	AVIF
)

var formatNames = map[Format]string{
	PNG:  "PNG",
	JPEG: "JPEG",
	GIF:  "GIF",
	BMP:  "BMP",
	SVG:  "SVG",
	WebP: "WebP",
	AVIF: "AVIF",
}

var formatMIME = map[Format]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	BMP:  "image/bmp",
	SVG:  "image/svg+xml",
	WebP: "image/webp",
	AVIF: "image/avif",
}

var extensionFormats = map[string]Format{
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".bmp":  BMP,
	".svg":  SVG,
	".svgz": SVG,
	".webp": WebP,
	".avif": AVIF,
}

// IgnoredExtensions are never probed as extensionless images, even in best-effort mode.
var IgnoredExtensions = []string{
	".html", ".css", ".js", ".json", ".md", ".xml",
	".mp3", ".ogv", ".mp4", ".mpeg", ".webm", ".zip", ".tgz",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unsupported"
}

// MIME returns the media type of the format, or "" for Unsupported.
func (f Format) MIME() string {
	return formatMIME[f]
}

// Native reports whether every host can decode the format without help.
func (f Format) Native() bool {
	switch f {
	case PNG, JPEG, GIF, BMP:
		return true
	}
	return false
}

// Convertible reports whether the format may need an external converter.
func (f Format) Convertible() bool {
	switch f {
	case SVG, WebP, AVIF:
		return true
	}
	return false
}

// FormatFromPath returns the format implied by the file extension of p.
// Query strings and fragments are ignored so URLs can be passed directly.
func FormatFromPath(p string) Format {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return extensionFormats[strings.ToLower(path.Ext(p))]
}

// FormatFromMIME returns the format for a media type. Parameters are ignored.
func FormatFromMIME(mime string) Format {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	for f, m := range formatMIME {
		if m == mime {
			return f
		}
	}
	return Unsupported
}

// HasIgnoredExtension reports whether p ends with an extension that is never an image.
func HasIgnoredExtension(p string) bool {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ToLower(p)
	for _, ext := range IgnoredExtensions {
		if strings.HasSuffix(p, ext) {
			return true
		}
	}
	return false
}
