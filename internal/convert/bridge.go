// Package convert obtains bytes a popup renderer can display for a resolved
// image resource.
//
// Natively decodable formats pass through. SVG, AVIF, and WebP on hosts without
// a WebP decoder are rasterized to PNG by an external converter program.
// Every result is memoized in a cache.Cache keyed by the resource locator, a
// freshness signal (mtime and size for local files, a content digest for
// downloads) and the converter that
// produced it, so a given image is converted at most once per change.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/ironsheep/quick-view-mcp/internal/cache"
	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/fetch"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
	"github.com/ironsheep/quick-view-mcp/internal/resolve"
)

// Decoded is an image ready for the renderer.
type Decoded struct {
	Data         []byte         `json:"-"`
	Format       imaging.Format `json:"-"`
	MIME         string         `json:"mime"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	SourceFormat imaging.Format `json:"-"`
	Converter    Program        `json:"converter,omitempty"`
	Resized      bool           `json:"resized,omitempty"`

	// SourceWidth and SourceHeight are the raster dimensions before downscaling.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
}

// Fetcher downloads remote resources.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
}

// Options configures a Bridge.
type Options struct {
	// Converters selects a program per convertible format. Missing entries
	// and incompatible programs leave the format unconfigured.
	Converters map[imaging.Format]Program

	// NativeWebP reports that the renderer decodes WebP itself.
	NativeWebP bool

	// BackgroundPattern composites a checkerboard behind transparent areas
	// when ImageMagick converts an image.
	BackgroundPattern bool

	// MaxSide is the largest side length returned; larger rasters are
	// downscaled. Zero means imaging.MaxPopupImageSide.
	MaxSide int

	Runner  Runner
	Fetcher Fetcher
	Cache   *cache.Cache[*Decoded]
	Logger  *log.Logger
}

// Bridge turns resources into displayable images. It is safe for concurrent use.
type Bridge struct {
	opts Options
}

// NewBridge creates a Bridge. Nil dependencies get working defaults.
func NewBridge(opts Options) *Bridge {
	if opts.Logger == nil {
		opts.Logger = discard
	}
	if opts.Runner == nil {
		opts.Runner = &ExecRunner{Logger: opts.Logger}
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.Options{})
	}
	if opts.Cache == nil {
		opts.Cache = cache.New[*Decoded]()
	}
	if opts.MaxSide <= 0 {
		opts.MaxSide = imaging.MaxPopupImageSide
	}
	return &Bridge{opts: opts}
}

// Cache returns the cache holding materialized images.
func (b *Bridge) Cache() *cache.Cache[*Decoded] {
	return b.opts.Cache
}

// purger is implemented by fetchers that memoize responses.
type purger interface {
	Purge()
}

// remover is implemented by fetchers that can forget a single URL.
type remover interface {
	Remove(url string)
}

// Clear drops every materialized image and any memoized downloads. It returns
// the number of cached images dropped.
func (b *Bridge) Clear() int {
	if p, ok := b.opts.Fetcher.(purger); ok {
		p.Purge()
	}
	return b.opts.Cache.Clear()
}

// Forget drops the cached images, and the memoized download, of one resource.
func (b *Bridge) Forget(res *resolve.Resource) int {
	if res.Kind == resolve.RemoteURL {
		if r, ok := b.opts.Fetcher.(remover); ok {
			r.Remove(res.Locator)
		}
	}
	return b.opts.Cache.Invalidate(res.Locator)
}

// Program returns the converter selected for f, or None when the selection is
// missing or cannot read f.
func (b *Bridge) Program(f imaging.Format) Program {
	p := b.opts.Converters[f]
	if !p.Supports(f) {
		return None
	}
	return p
}

// NeedsConverter reports whether f must go through an external program.
func (b *Bridge) NeedsConverter(f imaging.Format) bool {
	if f == imaging.WebP && b.opts.NativeWebP {
		return false
	}
	return f.Convertible()
}

// source is a resource whose bytes are either in memory or on disk.
type source struct {
	locator string
	signal  string
	format  imaging.Format
	path    string // set for local files
	data    []byte // set for data URIs and remote resources
}

// Materialize returns displayable bytes for res.
//
// Failures are *failure.Error values: KindResolve for a missing local file,
// KindFetch for remote download errors, KindConverterUnconfigured when the
// format needs a converter and none is selected, KindConverterInvocation when
// the converter fails to run, and KindDecode when the bytes are not an image.
func (b *Bridge) Materialize(ctx context.Context, res *resolve.Resource) (*Decoded, error) {
	if res == nil {
		return nil, failure.New(failure.KindResolve, "no resource")
	}
	src, err := b.load(ctx, res)
	if err != nil {
		return nil, err
	}

	fp := cache.Fingerprint{Locator: src.locator, Signal: src.signal}
	var prog Program
	switch {
	case src.format == imaging.Unsupported:
		return nil, failure.New(failure.KindDecode, "unsupported image format for %s", src.locator)
	case b.NeedsConverter(src.format):
		prog = b.Program(src.format)
		if prog == None {
			return nil, failure.New(failure.KindConverterUnconfigured, "no %s converter configured", src.format)
		}
		fp.Converter = string(prog)
	}

	return b.opts.Cache.GetOrCompute(ctx, fp, func(ctx context.Context) (*Decoded, error) {
		return b.compute(ctx, src, prog)
	})
}

// load gathers the bytes or path of res and its freshness signal.
func (b *Bridge) load(ctx context.Context, res *resolve.Resource) (*source, error) {
	src := &source{locator: res.Locator, format: res.Format}
	switch res.Kind {
	case resolve.DataURI:
		src.data = res.Data
		if src.format == imaging.Unsupported {
			src.format = imaging.FormatFromMIME(res.MIME)
		}
	case resolve.RemoteURL:
		resp, err := b.opts.Fetcher.Get(ctx, res.Locator)
		if err != nil {
			return nil, err
		}
		src.data = resp.Data
		src.signal = resolve.Digest(resp.Data)
		if src.format == imaging.Unsupported {
			src.format = resp.Format
		}
	case resolve.LocalFile:
		fi, err := os.Stat(res.Locator)
		if err != nil {
			return nil, failure.Wrap(failure.KindResolve, "stat "+res.Locator, err)
		}
		if fi.IsDir() {
			return nil, failure.New(failure.KindResolve, "%s is a directory", res.Locator)
		}
		src.path = res.Locator
		src.signal = fmt.Sprintf("%d:%d", fi.ModTime().UnixNano(), fi.Size())
	default:
		return nil, failure.New(failure.KindResolve, "unknown resource kind %v", res.Kind)
	}
	return src, nil
}

func (b *Bridge) compute(ctx context.Context, src *source, prog Program) (*Decoded, error) {
	data := src.data
	if src.path != "" && prog == None {
		var err error
		if data, err = os.ReadFile(src.path); err != nil {
			return nil, failure.Wrap(failure.KindResolve, "read "+src.path, err)
		}
	}

	if prog != None {
		spec := Spec{Format: src.format, Program: prog}
		var stdin []byte
		path := src.path
		if path == "" {
			stdin = data
			if src.format == imaging.SVG {
				inflated, err := inflateSVGZ(stdin)
				if err != nil {
					return nil, err
				}
				stdin = inflated
			}
		}
		b.opts.Logger.Printf("converting %s image %s with %s", src.format, src.locator, prog)
		out, err := b.opts.Runner.Run(ctx, string(prog), spec.Args(path, b.opts.BackgroundPattern), stdin)
		if err != nil {
			return nil, err
		}
		data = out
	}

	fit, err := imaging.FitPopup(data, b.opts.MaxSide)
	if err != nil {
		return nil, err
	}
	info, err := imaging.Inspect(fit.Data)
	if err != nil {
		return nil, err
	}
	if !fit.Resized && prog == None && info.Format != src.format && src.format != imaging.Unsupported {
		b.opts.Logger.Printf("%s declared as %s but contains %s", src.locator, src.format, info.Format)
	}
	return &Decoded{
		Data:         fit.Data,
		Format:       info.Format,
		MIME:         info.Format.MIME(),
		Width:        fit.Width,
		Height:       fit.Height,
		SourceFormat: src.format,
		Converter:    prog,
		Resized:      fit.Resized,
		SourceWidth:  fit.SourceWidth,
		SourceHeight: fit.SourceHeight,
	}, nil
}

// inflateSVGZ decompresses gzip-compressed SVG data. Plain SVG is returned as is.
func inflateSVGZ(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Wrap(failure.KindDecode, "open svgz", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, failure.Wrap(failure.KindDecode, "inflate svgz", err)
	}
	return out, nil
}
