package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/quick-view-mcp/internal/preview"
)

// Server handles MCP protocol communication
type Server struct {
	orchestrator *preview.Orchestrator
	logger       *log.Logger
	version      string

	mu       sync.Mutex
	sessions map[string]*preview.Session

	writeMu sync.Mutex
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Options configures a Server.
type Options struct {
	Orchestrator *preview.Orchestrator
	Logger       *log.Logger
	Version      string
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	if opts.Orchestrator == nil {
		opts.Orchestrator = preview.New(preview.Options{Logger: opts.Logger})
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Server{
		orchestrator: opts.Orchestrator,
		logger:       opts.Logger,
		version:      opts.Version,
		sessions:     make(map[string]*preview.Session),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve reads requests from r until EOF and writes responses to w.
//
// tools/call requests run concurrently, so a slow conversion does not hold up
// later hovers; their responses may therefore arrive out of order. Serve
// returns after every in-flight call has answered.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests; documents are sent whole
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)
	var wg sync.WaitGroup
	defer wg.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Printf("Failed to parse request: %v", err)
			continue
		}

		if req.Method == "tools/call" {
			wg.Add(1)
			go func(req MCPRequest) {
				defer wg.Done()
				s.write(encoder, s.handleToolsCall(ctx, &req))
			}(req)
			continue
		}
		s.write(encoder, s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write encodes one response. Encoders are not safe for concurrent use.
func (s *Server) write(encoder *json.Encoder, resp *MCPResponse) {
	if resp == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := encoder.Encode(resp); err != nil {
		s.logger.Printf("Failed to encode response: %v", err)
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "quick-view-mcp",
				"version": s.version,
			},
		},
	}
}

// session returns the preview session for key, creating it on first use.
func (s *Server) session(key string) *preview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = preview.NewSession(s.orchestrator)
		s.sessions[key] = sess
	}
	return sess
}
