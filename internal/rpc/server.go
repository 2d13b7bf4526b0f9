// Package rpc serves the mapcheck tool registry to an assistant over
// line-delimited JSON-RPC 2.0 on stdio. The protocol is the tool-calling
// subset most agent runtimes speak: initialize, tools/list, tools/call
// and ping. One request is handled at a time; responses go out on the
// same stream in request order, notifications get no response.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"mapcheck/internal/tools"
)

// ProtocolVersion is the wire version reported by initialize.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// toolInfo is the tools/list entry shape.
type toolInfo struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputSchema tools.Schema `json:"inputSchema"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ServerInfo names this server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Server speaks JSON-RPC over a reader/writer pair. In production both
// are the process's stdio; tests drive it through pipes.
type Server struct {
	registry *tools.Registry
	info     ServerInfo
	log      *zap.Logger

	writeMu sync.Mutex
}

// NewServer builds a server for a populated registry.
func NewServer(registry *tools.Registry, info ServerInfo, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if info.Name == "" {
		info.Name = "mapcheck"
	}
	return &Server{registry: registry, info: info, log: log}
}

// Run reads requests until EOF or context cancellation. EOF is a normal
// shutdown and returns nil, as is cancellation: the server owns stdio,
// so there is nothing to flush on the way out.
//
// A reader blocked in Scan cannot be interrupted, so cancellation does
// not wait for it. The read goroutine unblocks on the next line or EOF
// and exits on its own; in the serve process it simply dies with the
// process.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	done := make(chan error, 1)
	go func() {
		for scanner.Scan() {
			if ctx.Err() != nil {
				done <- nil
				return
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			s.handleLine(ctx, line, out)
		}
		if err := scanner.Err(); err != nil {
			done <- fmt.Errorf("failed to read request stream: %w", err)
			return
		}
		done <- nil
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-done:
		return err
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte, out io.Writer) {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.writeError(out, nil, codeParseError, "parse error: "+err.Error())
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeError(out, req.ID, codeInvalidRequest, "invalid request")
		return
	}

	// An absent id makes a notification. An explicit null id is neither
	// a notification nor a usable request id: answer it with an error
	// instead of dropping it.
	if string(req.ID) == "null" {
		s.writeError(out, req.ID, codeInvalidRequest, "invalid request: id must not be null")
		return
	}
	notification := len(req.ID) == 0

	s.log.Debug("rpc request",
		zap.String("method", req.Method),
		zap.Bool("notification", notification))

	result, rpcErr := s.dispatch(ctx, &req)
	if notification {
		return
	}
	if rpcErr != nil {
		s.writeError(out, req.ID, rpcErr.Code, rpcErr.Message)
		return
	}
	s.write(out, response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) dispatch(ctx context.Context, req *request) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		return map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      s.info,
		}, nil

	case "notifications/initialized", "notifications/cancelled":
		return nil, nil

	case "ping":
		return map[string]any{}, nil

	case "tools/list":
		return s.listTools(), nil

	case "tools/call":
		return s.callTool(ctx, req.Params)

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

func (s *Server) listTools() map[string]any {
	all := s.registry.All()
	infos := make([]toolInfo, 0, len(all))
	for _, tool := range all {
		schema := tool.Schema
		if schema.Required == nil {
			schema.Required = []string{}
		}
		if schema.Properties == nil {
			schema.Properties = map[string]tools.Property{}
		}
		infos = append(infos, toolInfo{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return map[string]any{"tools": infos}
}

// callTool runs a tool. A tool-level failure is reported inside the
// result with isError set, so the assistant sees the message; protocol
// failures (unknown tool, bad params) are JSON-RPC errors.
func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *rpcError) {
	var params callParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	if params.Name == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params: tool name required"}
	}
	if !s.registry.Has(params.Name) {
		return nil, &rpcError{Code: codeInvalidParams, Message: "unknown tool: " + params.Name}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	res, err := s.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		return callResult{
			Content: []contentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	return callResult{
		Content: []contentItem{{Type: "text", Text: res.Output}},
	}, nil
}

func (s *Server) writeError(out io.Writer, id json.RawMessage, code int, message string) {
	s.write(out, response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}

func (s *Server) write(out io.Writer, resp response) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to serialize response", zap.Error(err))
		return
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		s.log.Error("failed to write response", zap.Error(err))
	}
}
