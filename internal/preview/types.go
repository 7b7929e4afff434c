package preview

import (
	"github.com/ironsheep/quick-view-mcp/internal/colors"
	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

// Request is one hover or one explicit invocation.
type Request struct {
	// Text is the full document text. Offsets are byte offsets into it.
	Text string `json:"text"`

	// Document identifies the buffer, and Version its revision. Together they
	// key the variable index; an empty Document disables that cache.
	Document string `json:"document,omitempty"`
	Version  int    `json:"version,omitempty"`

	// FilePath is the document's file on disk. Relative image references
	// resolve against its directory. Empty for unsaved buffers.
	FilePath string `json:"file_path,omitempty"`

	// Position is the hover point. Ignored for manual invocations.
	Position int `json:"position"`

	// Manual marks an explicit invocation on Selection. Manual requests ignore
	// the color_preview and image_preview switches and fall back to plain-text
	// matching.
	Manual    bool         `json:"manual,omitempty"`
	Selection scope.Region `json:"selection"`

	// Variables expand ${name} placeholders in path alias replacements.
	Variables map[string]string `json:"variables,omitempty"`

	// Background is the editor background colour, used to pick swatch cell
	// colours. Empty means a light background.
	Background string `json:"background,omitempty"`

	// DeviceScale is the display's pixel ratio. Zero means 1.
	DeviceScale float64 `json:"device_scale,omitempty"`
}

// Kind is the kind of preview content.
type Kind string

const (
	KindSwatch Kind = "swatch"
	KindImage  Kind = "image"
)

// Payload is render-ready preview content.
type Payload struct {
	Kind   Kind              `json:"kind"`
	Region scope.ScopeRegion `json:"region"`
	Title  string            `json:"title"`

	// Swatch content. CSS is set for every colour; SwatchPNG only for
	// translucent ones, which are shown over a checkerboard.
	Color     *colors.Value `json:"color,omitempty"`
	CSS       string        `json:"css,omitempty"`
	Hex       string        `json:"hex,omitempty"`
	SwatchPNG []byte        `json:"swatch_png,omitempty"`

	// Image content. Width and Height describe Image; Label reports the
	// source size, which differs when an oversized raster was downscaled.
	Image         []byte `json:"image,omitempty"`
	MIME          string `json:"mime,omitempty"`
	Format        string `json:"format,omitempty"`
	SourceFormat  string `json:"source_format,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	DisplayWidth  int    `json:"display_width,omitempty"`
	DisplayHeight int    `json:"display_height,omitempty"`
	Label         string `json:"label,omitempty"`
	OpenHref      string `json:"open_href,omitempty"`

	// Popup decoration.
	Pointer     bool    `json:"pointer"`
	Rounded     bool    `json:"rounded"`
	BorderWidth float64 `json:"border_width"`
}

// NoPreview explains why nothing is shown.
type NoPreview struct {
	Reason failure.Kind `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

// Result is exactly one of Payload or NoPreview.
type Result struct {
	Payload   *Payload   `json:"payload,omitempty"`
	NoPreview *NoPreview `json:"no_preview,omitempty"`
}

// OK reports whether the result carries a payload.
func (r Result) OK() bool {
	return r.Payload != nil
}

func noPreview(err error) Result {
	return Result{NoPreview: &NoPreview{Reason: failure.KindOf(err), Detail: err.Error()}}
}
