package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"path/filepath"

	"github.com/ironsheep/quick-view-mcp/internal/colors"
	"github.com/ironsheep/quick-view-mcp/internal/convert"
	"github.com/ironsheep/quick-view-mcp/internal/preview"
	"github.com/ironsheep/quick-view-mcp/internal/resolve"
	"github.com/ironsheep/quick-view-mcp/internal/scope"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "quick_view", "quick_view_parse_color").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A preview that cannot be built is not an error: quick_view reports it as a
// no_preview result with a reason.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	switch name {
	case "quick_view":
		return s.handleQuickView(ctx, args)
	case "quick_view_parse_color":
		return s.handleParseColor(args)
	case "quick_view_resolve_path":
		return s.handleResolvePath(args)
	case "quick_view_open_image":
		return s.handleOpenImage(ctx, args)
	case "quick_view_clear_cache":
		return s.handleClearCache(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Preview ===

type quickViewArgs struct {
	Text           string            `json:"text"`
	Position       int               `json:"position"`
	Mode           string            `json:"mode"`
	SelectionStart *int              `json:"selection_start"`
	SelectionEnd   *int              `json:"selection_end"`
	Session        string            `json:"session"`
	Document       string            `json:"document"`
	Version        int               `json:"version"`
	FilePath       string            `json:"file_path"`
	Variables      map[string]string `json:"variables"`
	Background     string            `json:"background"`
	DeviceScale    float64           `json:"device_scale"`
}

// QuickViewResult is the answer to a quick_view call.
type QuickViewResult struct {
	// Action is one of preview, ignore, hide, hidden or superseded.
	Action string `json:"action"`
	preview.Result
}

func (s *Server) handleQuickView(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a quickViewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.DeviceScale == 0 {
		a.DeviceScale = 1.0
	}

	req := preview.Request{
		Text:        a.Text,
		Document:    a.Document,
		Version:     a.Version,
		FilePath:    a.FilePath,
		Position:    a.Position,
		Variables:   a.Variables,
		Background:  a.Background,
		DeviceScale: a.DeviceScale,
	}
	sess := s.session(firstNonEmpty(a.Session, a.Document, a.FilePath))

	var out preview.Outcome
	switch a.Mode {
	case "", "hover":
		out = sess.Hover(ctx, req)
	case "invoke":
		start, end := a.Position, a.Position
		if a.SelectionStart != nil {
			start, end = *a.SelectionStart, *a.SelectionStart
		}
		if a.SelectionEnd != nil {
			end = *a.SelectionEnd
		}
		req.Selection = scope.Region{Start: start, End: end}
		out = sess.Invoke(ctx, req)
	case "hidden":
		sess.Hidden()
		return QuickViewResult{Action: "hidden"}, nil
	default:
		return nil, fmt.Errorf("invalid mode %q: must be hover, invoke or hidden", a.Mode)
	}

	if out.Action != preview.ActionPreview {
		return QuickViewResult{Action: string(out.Action)}, nil
	}
	select {
	case res, ok := <-out.Result:
		if !ok {
			return QuickViewResult{Action: "superseded"}, nil
		}
		return QuickViewResult{Action: string(preview.ActionPreview), Result: res}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// === Colours ===

type parseColorArgs struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

// ColorInfo describes a parsed colour.
type ColorInfo struct {
	RGBA   colors.Value    `json:"rgba"`
	Hex    string          `json:"hex"`
	CSS    string          `json:"css"`
	HSL    colors.HSLColor `json:"hsl"`
	Opaque bool            `json:"opaque"`
}

func (s *Server) handleParseColor(args json.RawMessage) (interface{}, error) {
	var a parseColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	c, err := colors.Parse(a.Color, colors.Context{Vars: colors.IndexVariables(a.Text)})
	if err != nil {
		return nil, err
	}
	return ColorInfo{RGBA: c, Hex: c.Hex(), CSS: c.CSS(), HSL: c.HSL(), Opaque: c.Opaque()}, nil
}

// === Image references ===

type referenceArgs struct {
	Reference string            `json:"reference"`
	FilePath  string            `json:"file_path"`
	Variables map[string]string `json:"variables"`
}

// ResolvedPath describes a resolved reference.
type ResolvedPath struct {
	*resolve.Resource
	Format string `json:"format"`
}

func (s *Server) resolveReference(args json.RawMessage) (*resolve.Resource, error) {
	var a referenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	dir := ""
	if a.FilePath != "" {
		dir = filepath.Dir(a.FilePath)
	}
	settings := s.orchestrator.Settings()
	return resolve.Resolve(a.Reference, dir, settings.PathAliases, resolve.Options{
		BestEffort: settings.ExtensionlessImagePreview,
		Variables:  a.Variables,
		Origin:     a.FilePath,
	})
}

func (s *Server) handleResolvePath(args json.RawMessage) (interface{}, error) {
	res, err := s.resolveReference(args)
	if err != nil {
		return nil, err
	}
	return ResolvedPath{Resource: res, Format: res.Format.String()}, nil
}

// OpenedImage is the content for viewing an image in its own sheet.
type OpenedImage struct {
	Href   string `json:"href"`
	HTML   string `json:"html"`
	Path   string `json:"path,omitempty"` // set when the file on disk can be opened directly
	MIME   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleOpenImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	res, err := s.resolveReference(args)
	if err != nil {
		return nil, err
	}
	d, err := s.orchestrator.Bridge().Materialize(ctx, res)
	if err != nil {
		return nil, err
	}
	href := preview.OpenHref(res, d)
	out := OpenedImage{
		Href:   href,
		HTML:   fmt.Sprintf(`<div style="text-align: center;"><img src="%s" /></div>`, html.EscapeString(href)),
		MIME:   d.MIME,
		Width:  d.SourceWidth,
		Height: d.SourceHeight,
	}
	if res.Kind == resolve.LocalFile && d.Converter == convert.None {
		out.Path = res.Locator
	}
	return out, nil
}

// === Cache ===

// handleClearCache drops everything, or only the entries of one reference.
func (s *Server) handleClearCache(args json.RawMessage) (interface{}, error) {
	var a referenceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reference == "" {
		n := s.orchestrator.ClearCaches()
		s.logger.Printf("cleared %d cached conversions", n)
		return map[string]interface{}{"cleared": n}, nil
	}

	res, err := s.resolveReference(args)
	if err != nil {
		return nil, err
	}
	n := s.orchestrator.Bridge().Forget(res)
	s.logger.Printf("cleared %d cached conversions of %s", n, res.Locator)
	return map[string]interface{}{"cleared": n, "locator": res.Locator}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
