// Package server implements the MCP (Model Context Protocol) server for quick
// previews of images and colours in editor documents.
//
// This package provides a JSON-RPC 2.0 server that exposes the preview engine
// through the MCP protocol. An editor client sends the document text and a
// cursor position; the server answers with render-ready popup content.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// tools/call requests are served concurrently. Responses carry the request ID
// and may be written out of order.
//
// # Available Tools
//
//   - quick_view: Preview the image or colour at a position (hover, invoke, hidden)
//   - quick_view_parse_color: Normalize a colour token to RGBA
//   - quick_view_resolve_path: Resolve an image reference without reading it
//   - quick_view_open_image: Content for viewing an image in its own sheet
//   - quick_view_clear_cache: Drop cached conversions
//
// # Sessions
//
// quick_view calls are grouped into sessions, one per editor view. Within a
// session a new hover supersedes the previous one, whose call then answers
// with action "superseded". Hovers inside the region of the popup being shown
// answer "ignore"; an invoke while a popup is shown answers "hide".
//
// # Error Handling
//
// A preview that cannot be built is a normal result with a no_preview reason
// such as converter_unconfigured or fetch_failure. Malformed arguments and
// failures of the other tools are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (the failure kind and cause)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(server.Options{Orchestrator: o})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
