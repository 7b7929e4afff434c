package imaging

import "testing"

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.png", PNG},
		{"/x/y/photo.JPG", JPEG},
		{"img.jpeg", JPEG},
		{"anim.gif", GIF},
		{"old.bmp", BMP},
		{"icon.svg", SVG},
		{"icon.svgz", SVG},
		{"pic.webp", WebP},
		{"pic.avif", AVIF},
		{"https://example.com/a.png?size=2#top", PNG},
		{"https://example.com/avatar", Unsupported},
		{"notes.txt", Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want Format
	}{
		{"image/png", PNG},
		{"IMAGE/JPEG", JPEG},
		{"image/svg+xml; charset=utf-8", SVG},
		{"image/avif", AVIF},
		{"text/html", Unsupported},
		{"", Unsupported},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := FormatFromMIME(tt.mime); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat_Classes(t *testing.T) {
	for _, f := range []Format{PNG, JPEG, GIF, BMP} {
		if !f.Native() || f.Convertible() {
			t.Errorf("%v should be native only", f)
		}
	}
	for _, f := range []Format{SVG, WebP, AVIF} {
		if f.Native() || !f.Convertible() {
			t.Errorf("%v should be convertible only", f)
		}
	}
	if Unsupported.MIME() != "" || Unsupported.String() != "unsupported" {
		t.Error("unexpected Unsupported metadata")
	}
	if WebP.String() != "WebP" || WebP.MIME() != "image/webp" {
		t.Error("unexpected WebP metadata")
	}
}

func TestHasIgnoredExtension(t *testing.T) {
	if !HasIgnoredExtension("https://example.com/index.HTML") {
		t.Error(".HTML should be ignored")
	}
	if !HasIgnoredExtension("https://example.com/app.js?v=3") {
		t.Error(".js with query should be ignored")
	}
	if HasIgnoredExtension("https://example.com/avatar") {
		t.Error("extensionless URL should not be ignored")
	}
}
