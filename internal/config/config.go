// Package config loads the preview settings.
//
// Settings are read from a JSON file whose keys match the editor plugin's
// settings file. Keys missing from the file keep their defaults. A .env file in
// the working directory may set the environment variables below.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ironsheep/quick-view-mcp/internal/convert"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
	"github.com/ironsheep/quick-view-mcp/internal/resolve"
	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

// Environment variables.
const (
	EnvSettings = "QUICK_VIEW_SETTINGS"  // path of the settings file
	EnvLogLevel = "QUICK_VIEW_LOG_LEVEL" // "debug" enables verbose logging
)

// Popup style flags.
const (
	StylePointer = "pointer"
	StyleRounded = "rounded"
)

// Settings is the configuration surface of the preview engine.
type Settings struct {
	ColorPreview              bool    `json:"color_preview"`
	ImagePreview              bool    `json:"image_preview"`
	ImageScopeSelector        string  `json:"image_scope_selector"`
	ColorScopeSelector        string  `json:"color_scope_selector"`
	ExtensionlessImagePreview bool    `json:"extensionless_image_preview"`
	PathAliases               Aliases `json:"path_aliases"`

	AVIFConverter string `json:"avif_converter"`
	SVGConverter  string `json:"svg_converter"`
	WebPConverter string `json:"webp_converter"`

	PopupBorderWidth float64  `json:"popup_border_width"`
	PopupStyle       []string `json:"popup_style"`

	ImageBackgroundPattern bool    `json:"image_background_pattern"`
	MaxPayloadSize         int     `json:"max_payload_size"` // KiB
	NativeWebP             bool    `json:"native_webp"`
	ConverterTimeout       float64 `json:"converter_timeout"` // seconds
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() *Settings {
	return &Settings{
		ColorPreview:           true,
		ImagePreview:           true,
		ImageScopeSelector:     scope.DefaultImageSelector,
		ColorScopeSelector:     scope.DefaultColorSelector,
		PathAliases:            Aliases{},
		PopupBorderWidth:       1,
		PopupStyle:             []string{StylePointer, StyleRounded},
		ImageBackgroundPattern: true,
		MaxPayloadSize:         8096,
		ConverterTimeout:       convert.DefaultTimeout.Seconds(),
	}
}

// Load reads settings from path, or from $QUICK_VIEW_SETTINGS when path is
// empty. With neither set, the defaults are returned.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvSettings))
	}
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := s.UnmarshalSettings(data); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s, nil
}

// UnmarshalSettings overlays the JSON object in data onto s and normalizes the result.
func (s *Settings) UnmarshalSettings(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		s.normalize()
		return nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return err
	}
	s.normalize()
	return nil
}

func (s *Settings) normalize() {
	if s.MaxPayloadSize <= 0 {
		s.MaxPayloadSize = 8096
	}
	if s.PopupBorderWidth < 0 {
		s.PopupBorderWidth = 0
	}
	if s.ConverterTimeout <= 0 {
		s.ConverterTimeout = convert.DefaultTimeout.Seconds()
	}
	if s.PathAliases == nil {
		s.PathAliases = Aliases{}
	}
	// An empty selector would silently disable classification; the preview
	// switches are the way to turn a kind off.
	if strings.TrimSpace(s.ImageScopeSelector) == "" {
		s.ImageScopeSelector = scope.DefaultImageSelector
	}
	if strings.TrimSpace(s.ColorScopeSelector) == "" {
		s.ColorScopeSelector = scope.DefaultColorSelector
	}
	s.AVIFConverter = string(normalizeConverter(s.AVIFConverter, imaging.AVIF))
	s.SVGConverter = string(normalizeConverter(s.SVGConverter, imaging.SVG))
	s.WebPConverter = string(normalizeConverter(s.WebPConverter, imaging.WebP))
}

// normalizeConverter maps unknown programs, and programs that cannot read f, to none.
func normalizeConverter(name string, f imaging.Format) convert.Program {
	p := convert.ParseProgram(name)
	if !p.Supports(f) {
		return convert.None
	}
	return p
}

// Converters returns the converter selected for each convertible format.
func (s *Settings) Converters() map[imaging.Format]convert.Program {
	return map[imaging.Format]convert.Program{
		imaging.AVIF: normalizeConverter(s.AVIFConverter, imaging.AVIF),
		imaging.SVG:  normalizeConverter(s.SVGConverter, imaging.SVG),
		imaging.WebP: normalizeConverter(s.WebPConverter, imaging.WebP),
	}
}

// Timeout returns the converter timeout.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.ConverterTimeout * float64(time.Second))
}

// HasStyle reports whether the popup style includes flag.
func (s *Settings) HasStyle(flag string) bool {
	return slices.Contains(s.PopupStyle, flag)
}

// Selectors returns the image and colour scope selectors.
func (s *Settings) Selectors() scope.Selectors {
	return scope.Selectors{Image: s.ImageScopeSelector, Color: s.ColorScopeSelector}
}

// Debug reports whether $QUICK_VIEW_LOG_LEVEL asks for debug logging.
func Debug() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(EnvLogLevel)), "debug")
}

// Aliases is the ordered path_aliases map. Order is significant: the first
// alias matching a path wins.
type Aliases []resolve.Alias

// UnmarshalJSON decodes a JSON object, keeping key order.
func (a *Aliases) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = Aliases{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("path_aliases must be an object")
	}
	out := Aliases{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("path_aliases[%q]: %w", key, err)
		}
		out = append(out, resolve.Alias{Prefix: key, Replacement: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// MarshalJSON encodes the aliases as a JSON object in order.
func (a Aliases) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, al := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(al.Prefix)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(al.Replacement)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
