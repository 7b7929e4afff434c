package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// referenceProperties are shared by the tools that take an image reference.
func referenceProperties() map[string]interface{} {
	return map[string]interface{}{
		"reference": map[string]interface{}{
			"type":        "string",
			"description": "Image reference as written in the document: relative or absolute path, aliased path, file:// or http(s) URL, or data URI. Surrounding quotes and url() are stripped.",
		},
		"file_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path of the document containing the reference. Relative references resolve against its directory.",
		},
		"variables": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
			"description":          "Values for ${name} placeholders in path alias replacements (e.g. folder, project_path)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "quick_view",
			Description: "Preview the image reference or colour literal at a position in a document. Returns a colour swatch or the displayable image bytes with popup sizing, or the reason no preview is available.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Full document text",
					},
					"position": map[string]interface{}{
						"type":        "integer",
						"description": "Hover position as a byte offset into text",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"hover", "invoke", "hidden"},
						"description": "hover: pointer hover at position. invoke: explicit command on the selection. hidden: the popup was closed. Default hover.",
						"default":     "hover",
					},
					"selection_start": map[string]interface{}{
						"type":        "integer",
						"description": "Selection start offset for invoke mode. Equal to selection_end for a bare cursor.",
					},
					"selection_end": map[string]interface{}{
						"type":        "integer",
						"description": "Selection end offset for invoke mode",
					},
					"session": map[string]interface{}{
						"type":        "string",
						"description": "View identifier. Requests in one session supersede each other. Defaults to document, then file_path.",
					},
					"document": map[string]interface{}{
						"type":        "string",
						"description": "Buffer identifier used with version to cache variable definitions",
					},
					"version": map[string]interface{}{
						"type":        "integer",
						"description": "Buffer change counter",
					},
					"file_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path of the document on disk, empty for unsaved buffers",
					},
					"variables": referenceProperties()["variables"],
					"background": map[string]interface{}{
						"type":        "string",
						"description": "Editor background colour, used to pick swatch checkerboard shades",
					},
					"device_scale": map[string]interface{}{
						"type":        "number",
						"description": "Display pixel ratio. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "quick_view_parse_color",
			Description: "Parse a colour token (hex, rgb(), hsl(), hwb(), named colour, or variable reference) into normalized RGBA.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Colour token, e.g. #ff000080, rgb(0 0 255 / 50%), rebeccapurple, var(--accent)",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Optional document text searched for variable definitions",
					},
				},
				"required": []string{"color"},
			},
		},
		{
			Name:        "quick_view_resolve_path",
			Description: "Resolve an image reference to an absolute path, URL, or data URI identity without reading it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": referenceProperties(),
				"required":   []string{"reference"},
			},
		},
		{
			Name:        "quick_view_open_image",
			Description: "Resolve and materialize an image for viewing in a separate sheet. Returns the href to open and the HTML sheet content.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": referenceProperties(),
				"required":   []string{"reference"},
			},
		},
		{
			Name:        "quick_view_clear_cache",
			Description: "Drop cached image conversions and downloads. With a reference, only the entries of that image are dropped; without one, every cache including variable indexes is cleared.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": referenceProperties(),
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
