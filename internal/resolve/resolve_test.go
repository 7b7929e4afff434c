package resolve

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
)

func TestResolve_LocalPaths(t *testing.T) {
	aliases := []Alias{{Prefix: "~", Replacement: "/proj/app"}}

	tests := []struct {
		name string
		raw  string
		dir  string
		want string
	}{
		{"alias at start", "~/img/a.png", "/proj/src", "/proj/app/img/a.png"},
		{"alias directly before file", "~/a.png", "/proj/src", "/proj/app/a.png"},
		{"alias not applied mid-filename", "file~name.png", "/proj/src", "/proj/src/file~name.png"},
		{"alias not applied to longer segment", "~foo/a.png", "/proj/src", "/proj/src/~foo/a.png"},
		{"alias not applied mid-path", "img/~/a.png", "/proj/src", "/proj/src/img/~/a.png"},
		{"relative", "img/a.png", "/proj/src", "/proj/src/img/a.png"},
		{"parent segments normalized", "../assets/./b.jpg", "/proj/src", "/proj/assets/b.jpg"},
		{"absolute", "/var/www/c.gif", "/proj/src", "/var/www/c.gif"},
		{"double quoted", `"img/a.png"`, "/proj/src", "/proj/src/img/a.png"},
		{"single quoted", `'img/a.png'`, "/proj/src", "/proj/src/img/a.png"},
		{"css url", `url("img/a.png")`, "/proj/src", "/proj/src/img/a.png"},
		{"angle brackets", `<img/a.png>`, "/proj/src", "/proj/src/img/a.png"},
		{"file url", "file:///tmp/x.webp", "/proj/src", "/tmp/x.webp"},
		{"file url on localhost", "file://localhost/tmp/x.png", "/proj/src", "/tmp/x.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.raw, tt.dir, aliases, Options{})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if res.Kind != LocalFile {
				t.Errorf("Kind: got %v, want local_file", res.Kind)
			}
			if res.Locator != tt.want {
				t.Errorf("Locator: got %s, want %s", res.Locator, tt.want)
			}
		})
	}
}

func TestResolve_AliasOrder(t *testing.T) {
	aliases := []Alias{
		{Prefix: "@", Replacement: "/first"},
		{Prefix: "@/", Replacement: "/second"},
		{Prefix: "assets/", Replacement: "${folder}/static/"},
	}
	opts := Options{Variables: map[string]string{"folder": "/work"}}

	res, err := Resolve("@/x/y.png", "/d", aliases, opts)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Locator != "/first/x/y.png" {
		t.Errorf("first matching alias should win: got %s", res.Locator)
	}

	res, err = Resolve("assets/logo.svg", "/d", aliases, opts)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Locator != "/work/static/logo.svg" {
		t.Errorf("variable expansion: got %s", res.Locator)
	}
	if res.Format != imaging.SVG {
		t.Errorf("Format: got %v, want SVG", res.Format)
	}
}

func TestResolve_RelativeAlias(t *testing.T) {
	aliases := []Alias{{Prefix: "#", Replacement: "../shared"}}
	res, err := Resolve("#/icons/a.png", "/proj/src", aliases, Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Locator != "/proj/shared/icons/a.png" {
		t.Errorf("got %s", res.Locator)
	}
}

func TestResolve_Remote(t *testing.T) {
	res, err := Resolve("https://example.com/img/a.png?x=1", "", nil, Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != RemoteURL || res.Format != imaging.PNG {
		t.Errorf("got %+v", res)
	}
	if res.Locator != "https://example.com/img/a.png?x=1" {
		t.Errorf("Locator: got %s", res.Locator)
	}
}

func TestResolve_ExtensionlessRemote(t *testing.T) {
	const ref = "https://example.com/avatar/42"

	_, err := Resolve(ref, "", nil, Options{})
	if !errors.Is(err, failure.Resolve) {
		t.Fatalf("default mode should reject extensionless URL, got %v", err)
	}

	res, err := Resolve(ref, "", nil, Options{BestEffort: true})
	if err != nil {
		t.Fatalf("best-effort Resolve failed: %v", err)
	}
	if res.Kind != RemoteURL || res.Format != imaging.Unsupported {
		t.Errorf("got %+v", res)
	}

	_, err = Resolve("https://example.com/page.html", "", nil, Options{BestEffort: true})
	if !errors.Is(err, failure.Resolve) {
		t.Errorf("ignored extensions must never be probed, got %v", err)
	}
}

func TestResolve_DataURI(t *testing.T) {
	payload := []byte("\x89PNG\r\n\x1a\nfake")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	res, err := Resolve(`"`+uri+`"`, "", nil, Options{Origin: "/a/b.css"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if res.Kind != DataURI || res.MIME != "image/png" || res.Format != imaging.PNG {
		t.Errorf("got %+v", res)
	}
	if string(res.Data) != string(payload) {
		t.Error("payload not decoded")
	}
	if !strings.HasPrefix(res.Locator, "data:image/png;sha256,") {
		t.Errorf("Locator: got %s", res.Locator)
	}
	if res.Origin != "/a/b.css" {
		t.Errorf("Origin: got %s", res.Origin)
	}
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		dir  string
	}{
		{"empty", `""`, "/d"},
		{"relative without dir", "img/a.png", ""},
		{"no image extension", "notes.txt", "/d"},
		{"malformed base64", "data:image/png;base64,!!!notbase64", ""},
		{"unknown subtype", "data:image/tiff;base64,AAAA", ""},
		{"not an image mime", "data:text/plain;base64,AAAA", ""},
		{"no separator", "data:image/png;base64", ""},
		{"url without host", "https:///a.png", ""},
		{"file url without path", "file://logo.png", "/d"},
		{"file url with remote host", "file://server/share/a.png", "/d"},
		{"file url without extension", "file:///tmp/notes", "/d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.raw, tt.dir, nil, Options{})
			if err == nil {
				t.Fatalf("expected error, got %+v", res)
			}
			if res != nil {
				t.Errorf("failed resolution must not return a resource, got %+v", res)
			}
			if !errors.Is(err, failure.Resolve) {
				t.Errorf("expected resolve failure, got %v", err)
			}
		})
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMIME string
		wantData string
	}{
		{"base64", "data:image/gif;base64,R0lGODlh", "image/gif", "GIF89a"},
		{"unpadded base64", "data:image/png;base64,YWJjZA", "image/png", "abcd"},
		{"base64 with whitespace", "data:image/png;base64,YWJj\n ZA==", "image/png", "abcd"},
		{"percent encoded svg", "data:image/svg+xml;utf8,%3Csvg%2F%3E", "image/svg+xml", "<svg/>"},
		{"upper case prefix", "DATA:image/webp;base64,YWJjZA==", "image/webp", "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, data, err := ParseDataURI(tt.uri)
			if err != nil {
				t.Fatalf("ParseDataURI failed: %v", err)
			}
			if mime != tt.wantMIME {
				t.Errorf("mime: got %s, want %s", mime, tt.wantMIME)
			}
			if string(data) != tt.wantData {
				t.Errorf("data: got %q, want %q", data, tt.wantData)
			}
		})
	}
}

func TestDataLocator_Stable(t *testing.T) {
	a := DataLocator("image/png", []byte("abc"))
	b := DataLocator("image/png", []byte("abc"))
	c := DataLocator("image/png", []byte("abd"))
	if a != b {
		t.Error("same content should give same locator")
	}
	if a == c {
		t.Error("different content should give different locator")
	}
}

func TestStripQuotes(t *testing.T) {
	tests := map[string]string{
		`"a.png"`:      "a.png",
		`'a.png'`:      "a.png",
		"`a.png`":      "a.png",
		`url(a.png)`:   "a.png",
		`URL('a.png')`: "a.png",
		`  a.png  `:    "a.png",
		`"a.png`:       "a.png",
	}
	for in, want := range tests {
		if got := StripQuotes(in); got != want {
			t.Errorf("StripQuotes(%q): got %q, want %q", in, got, want)
		}
	}
}
