// Package preview sequences classification, colour parsing, path resolution
// and image materialization into a single render-ready result.
//
// Build never returns an error. Every failure of a downstream stage becomes a
// NoPreview carrying the failure kind; the underlying cause is logged, and raw
// converter output never reaches the caller.
package preview

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/quick-view-mcp/internal/cache"
	"github.com/ironsheep/quick-view-mcp/internal/colors"
	"github.com/ironsheep/quick-view-mcp/internal/config"
	"github.com/ironsheep/quick-view-mcp/internal/convert"
	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/fetch"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
	"github.com/ironsheep/quick-view-mcp/internal/resolve"
	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

// Options configures an Orchestrator.
type Options struct {
	Settings *config.Settings

	// Matcher is the host scope engine. Nil means scope.NewPatternMatcher.
	Matcher scope.Matcher

	// Bridge materializes images. Nil builds one from Settings.
	Bridge *convert.Bridge

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// Orchestrator builds previews. It is safe for concurrent use.
type Orchestrator struct {
	settings   *config.Settings
	classifier *scope.Classifier
	bridge     *convert.Bridge
	vars       *cache.Cache[*colors.VarIndex]
	logger     *log.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Matcher == nil {
		opts.Matcher = scope.NewPatternMatcher()
	}
	if opts.Bridge == nil {
		opts.Bridge = NewBridge(opts.Settings, opts.Logger)
	}
	return &Orchestrator{
		settings:   opts.Settings,
		classifier: scope.NewClassifier(opts.Matcher),
		bridge:     opts.Bridge,
		vars:       cache.New[*colors.VarIndex](),
		logger:     opts.Logger,
	}
}

// NewBridge builds the converter bridge described by s.
func NewBridge(s *config.Settings, logger *log.Logger) *convert.Bridge {
	return convert.NewBridge(convert.Options{
		Converters:        s.Converters(),
		NativeWebP:        s.NativeWebP,
		BackgroundPattern: s.ImageBackgroundPattern,
		Runner:            &convert.ExecRunner{Timeout: s.Timeout(), Logger: logger},
		Fetcher:           fetch.New(fetch.Options{MaxPayloadKiB: s.MaxPayloadSize}),
		Logger:            logger,
	})
}

// Settings returns the settings the orchestrator was built with.
func (o *Orchestrator) Settings() *config.Settings {
	return o.settings
}

// Bridge returns the image bridge.
func (o *Orchestrator) Bridge() *convert.Bridge {
	return o.bridge
}

// ClearCaches drops every cached conversion, memoized download and variable
// index, and returns the number of conversions dropped.
func (o *Orchestrator) ClearCaches() int {
	o.vars.Clear()
	return o.bridge.Clear()
}

// Build runs one request through the pipeline.
func (o *Orchestrator) Build(ctx context.Context, req Request) Result {
	region, err := o.classify(req)
	if err != nil {
		return o.fail(req, err)
	}

	var p *Payload
	switch region.Tag {
	case scope.TagColor:
		p, err = o.colorPayload(ctx, req, region)
	case scope.TagImage:
		p, err = o.imagePayload(ctx, req, region)
	default:
		err = failure.ClassifyMiss
	}
	if err != nil {
		return o.fail(req, err)
	}
	p.Region = *region
	p.Pointer = o.settings.HasStyle(config.StylePointer)
	p.Rounded = o.settings.HasStyle(config.StyleRounded)
	p.BorderWidth = o.settings.PopupBorderWidth
	return Result{Payload: p}
}

// Submit runs Build in the background and delivers its result on the
// returned channel, which receives exactly one value.
func (o *Orchestrator) Submit(ctx context.Context, req Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- o.Build(ctx, req)
	}()
	return ch
}

func (o *Orchestrator) fail(req Request, err error) Result {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = failure.Wrap(failure.KindClassifyMiss, "request superseded", err)
	}
	if failure.KindOf(err) != failure.KindClassifyMiss {
		o.logger.Printf("no preview for %s: %v", describe(req), err)
	}
	return noPreview(err)
}

func describe(req Request) string {
	name := req.FilePath
	if name == "" {
		name = req.Document
	}
	if name == "" {
		name = "<buffer>"
	}
	if req.Manual {
		return fmt.Sprintf("%s selection %d-%d", name, req.Selection.Start, req.Selection.End)
	}
	return fmt.Sprintf("%s@%d", name, req.Position)
}

// classify finds the region to preview. Hover requests only consult the
// selectors whose preview type is switched on; a hover that only a switched
// off selector would have matched is reported as KindDisabled.
func (o *Orchestrator) classify(req Request) (*scope.ScopeRegion, error) {
	sel := o.settings.Selectors()
	if req.Manual {
		return o.classifier.ClassifySelection(req.Selection, req.Text, sel)
	}

	enabled := sel
	if !o.settings.ImagePreview {
		enabled.Image = ""
	}
	if !o.settings.ColorPreview {
		enabled.Color = ""
	}
	if enabled == (scope.Selectors{}) {
		return nil, failure.New(failure.KindDisabled, "color and image previews are switched off")
	}

	region, err := o.classifier.Classify(req.Position, req.Text, enabled)
	if err == nil || enabled == sel {
		return region, err
	}
	if hidden, herr := o.classifier.Classify(req.Position, req.Text, sel); herr == nil {
		return nil, failure.New(failure.KindDisabled, "%s preview is switched off", hidden.Tag)
	}
	return nil, err
}

func (o *Orchestrator) colorPayload(ctx context.Context, req Request, region *scope.ScopeRegion) (*Payload, error) {
	vars, err := o.variables(ctx, req)
	if err != nil {
		return nil, err
	}
	c, err := colors.Parse(region.Text, colors.Context{Vars: vars, BareHex: true})
	if err != nil {
		return nil, err
	}

	p := &Payload{
		Kind:  KindSwatch,
		Title: region.Text,
		Color: &c,
		CSS:   c.CSS(),
		Hex:   c.Hex(),
	}
	if !c.Opaque() {
		png, err := imaging.Swatch(c, o.theme(req))
		if err != nil {
			return nil, failure.Wrap(failure.KindDecode, "render swatch", err)
		}
		p.SwatchPNG = png
		p.MIME = imaging.PNG.MIME()
		p.Width, p.Height = imaging.SwatchSize, imaging.SwatchSize
	}
	return p, nil
}

// variables returns the variable index of the request's document, built once
// per document version and content. Clients that never bump the version still
// see edits.
func (o *Orchestrator) variables(ctx context.Context, req Request) (*colors.VarIndex, error) {
	if req.Document == "" {
		return colors.IndexVariables(req.Text), nil
	}
	fp := cache.Fingerprint{Locator: req.Document, Signal: strconv.Itoa(req.Version) + ":" + resolve.Digest([]byte(req.Text))}
	return o.vars.GetOrCompute(ctx, fp, func(context.Context) (*colors.VarIndex, error) {
		return colors.IndexVariables(req.Text), nil
	})
}

func (o *Orchestrator) theme(req Request) imaging.Theme {
	if req.Background == "" {
		return imaging.Light
	}
	bg, err := colors.Parse(req.Background, colors.Context{})
	if err != nil {
		return imaging.Light
	}
	return imaging.ThemeOf(bg)
}

func (o *Orchestrator) imagePayload(ctx context.Context, req Request, region *scope.ScopeRegion) (*Payload, error) {
	dir := ""
	if req.FilePath != "" {
		dir = filepath.Dir(req.FilePath)
	}
	res, err := resolve.Resolve(region.Text, dir, o.settings.PathAliases, resolve.Options{
		BestEffort: o.settings.ExtensionlessImagePreview,
		Variables:  req.Variables,
		Origin:     req.FilePath,
	})
	if err != nil {
		return nil, err
	}

	d, err := o.bridge.Materialize(ctx, res)
	if err != nil {
		return nil, err
	}

	dw, dh := imaging.ScaleForPopup(d.Width, d.Height, req.DeviceScale)
	return &Payload{
		Kind:          KindImage,
		Title:         title(res),
		Image:         d.Data,
		MIME:          d.MIME,
		Format:        d.Format.String(),
		SourceFormat:  d.SourceFormat.String(),
		Width:         d.Width,
		Height:        d.Height,
		DisplayWidth:  dw,
		DisplayHeight: dh,
		Label:         imaging.SizeLabel(d.SourceWidth, d.SourceHeight),
		OpenHref:      OpenHref(res, d),
	}, nil
}

func title(res *resolve.Resource) string {
	if res.Kind == resolve.DataURI {
		return "data URI (" + res.MIME + ")"
	}
	return res.Locator
}

// OpenHref returns the link that opens the image in a new sheet: a file:// URL
// for local images shown as they are on disk, the displayed bytes as a data
// URI otherwise.
func OpenHref(res *resolve.Resource, d *convert.Decoded) string {
	if res.Kind == resolve.LocalFile && d.Converter == convert.None && !d.Resized {
		return "file://" + filepath.ToSlash(res.Locator)
	}
	return DataURI(d.MIME, d.Data)
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
