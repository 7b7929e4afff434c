package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsheep/quick-view-mcp/internal/convert"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
	"github.com/ironsheep/quick-view-mcp/internal/resolve"
	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "QuickView.sublime-settings")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvSettings, "")
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !s.ColorPreview || !s.ImagePreview || !s.ImageBackgroundPattern {
		t.Errorf("previews should default to on: %+v", s)
	}
	if s.MaxPayloadSize != 8096 {
		t.Errorf("MaxPayloadSize: got %d", s.MaxPayloadSize)
	}
	if s.Timeout() != 10*time.Second {
		t.Errorf("Timeout: got %v", s.Timeout())
	}
	for f, p := range s.Converters() {
		if p != convert.None {
			t.Errorf("%v converter should default to none, got %q", f, p)
		}
	}
}

func TestLoad_File(t *testing.T) {
	p := writeSettings(t, `{
		"color_preview": false,
		"svg_converter": "inkscape",
		"avif_converter": "dwebp",
		"webp_converter": "Magick",
		"path_aliases": {"~": "${folder}/app", "@": "/lib", "assets/": ""},
		"popup_style": ["rounded"],
		"max_payload_size": 0,
		"converter_timeout": 2.5
	}`)
	s, err := Load(p)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ColorPreview {
		t.Error("color_preview not applied")
	}
	if !s.ImagePreview {
		t.Error("image_preview default lost")
	}

	conv := s.Converters()
	if conv[imaging.SVG] != convert.Inkscape {
		t.Errorf("svg: got %q", conv[imaging.SVG])
	}
	if conv[imaging.AVIF] != convert.None {
		t.Errorf("dwebp cannot read AVIF, got %q", conv[imaging.AVIF])
	}
	if conv[imaging.WebP] != convert.Magick {
		t.Errorf("webp: got %q", conv[imaging.WebP])
	}

	want := Aliases{
		{Prefix: "~", Replacement: "${folder}/app"},
		{Prefix: "@", Replacement: "/lib"},
		{Prefix: "assets/", Replacement: ""},
	}
	if len(s.PathAliases) != len(want) {
		t.Fatalf("aliases: got %v", s.PathAliases)
	}
	for i := range want {
		if s.PathAliases[i] != want[i] {
			t.Errorf("alias %d: got %v, want %v", i, s.PathAliases[i], want[i])
		}
	}

	if !s.HasStyle(StyleRounded) || s.HasStyle(StylePointer) {
		t.Errorf("popup_style: got %v", s.PopupStyle)
	}
	if s.MaxPayloadSize != 8096 {
		t.Errorf("invalid max_payload_size should fall back to default, got %d", s.MaxPayloadSize)
	}
	if s.Timeout() != 2500*time.Millisecond {
		t.Errorf("Timeout: got %v", s.Timeout())
	}
}

func TestLoad_Selectors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantImage string
		wantColor string
	}{
		{"empty restores defaults", `{"image_scope_selector": "", "color_scope_selector": "  "}`, scope.DefaultImageSelector, scope.DefaultColorSelector},
		{"custom kept", `{"color_scope_selector": "constant.other.color | support.constant.color"}`, scope.DefaultImageSelector, "constant.other.color | support.constant.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(writeSettings(t, tt.content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			sel := s.Selectors()
			if sel.Image != tt.wantImage || sel.Color != tt.wantColor {
				t.Errorf("got %+v, want image %q color %q", sel, tt.wantImage, tt.wantColor)
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	p := writeSettings(t, `{"image_preview": false}`)
	t.Setenv(EnvSettings, p)
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ImagePreview {
		t.Error("settings file from environment not applied")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeSettings(t, `{"path_aliases": ["a"]}`)); err == nil {
		t.Error("expected error for non-object path_aliases")
	}
	if _, err := Load(writeSettings(t, `{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestAliases_RoundTripOrder(t *testing.T) {
	in := Aliases{{Prefix: "z", Replacement: "/z"}, {Prefix: "a", Replacement: "/a"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"z":"/z","a":"/a"}` {
		t.Errorf("got %s", data)
	}
	var out Aliases
	if err := json.Unmarshal([]byte(`null`), &out); err != nil || len(out) != 0 {
		t.Errorf("null: got %v, %v", out, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(out) != 2 || out[0] != (resolve.Alias{Prefix: "z", Replacement: "/z"}) {
		t.Errorf("got %v", out)
	}
}

func TestDebug(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	if !Debug() {
		t.Error("expected debug")
	}
	t.Setenv(EnvLogLevel, "info")
	if Debug() {
		t.Error("unexpected debug")
	}
}
