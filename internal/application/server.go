package application

import (
	"context"
	"encoding/json"
	"fmt"

	"weather-mcp-server/internal/domain"
)

// MCP protocol constants reported during the initialize handshake.
const (
	protocolVersion = "2024-11-05"
	serverName      = "weather-mcp-server"
	serverVersion   = "1.0.0"
)

// Server is the main MCP server implementation.
// It orchestrates the transport layer and the dispatcher, and implements
// the MCP protocol methods (initialize, tools/list, tools/call).
type Server struct {
	transport  domain.Transport
	dispatcher *Dispatcher
	registry   *ToolRegistry
	config     *domain.Config
	logger     *StructuredLogger
}

// NewServer creates a new MCP server instance.
func NewServer(
	transport domain.Transport,
	dispatcher *Dispatcher,
	registry *ToolRegistry,
	config *domain.Config,
) *Server {
	return &Server{
		transport:  transport,
		dispatcher: dispatcher,
		registry:   registry,
		config:     config,
		logger:     NewStructuredLogger(),
	}
}

// Start begins the server operation.
// It starts the transport layer and begins processing incoming requests.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, map[string]interface{}{
			"transport_type": s.config.Transport.Type,
		})
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"transport_type": s.config.Transport.Type,
		"tools":          len(s.registry.ListTools()),
	})

	go s.processRequests(ctx)

	return nil
}

// processRequests continuously processes incoming JSON-RPC requests.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, transport is shutting down
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request. Per-request
// failures become structured error responses; the server stays
// available for the next request regardless of how this one ends.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.LogInfo("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	var response *domain.Response

	switch req.Method {
	case "initialize":
		response = s.handleInitialize(req)
	case "tools/list":
		response = s.handleToolsList(req)
	case "tools/call":
		response = s.handleToolsCall(ctx, req)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if response == nil {
		// Error response already sent by the method handler.
		return
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": req.ID,
		})
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleInitialize handles the MCP initialize method.
// This is the initial handshake between client and server.
func (s *Server) handleInitialize(req *domain.Request) *domain.Response {
	result := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    serverName,
			"version": serverVersion,
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleToolsList handles the MCP tools/list method.
// Schemas are returned in their raw document form with $ref pointers
// intact; resolution is an internal concern.
func (s *Server) handleToolsList(req *domain.Request) *domain.Response {
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": s.registry.ListTools(),
		},
	}
}

// handleToolsCall handles the MCP tools/call method.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) *domain.Response {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil
	}

	result, dispatchErr := s.dispatcher.Invoke(ctx, toolReq.Name, toolReq.Arguments)
	if dispatchErr != nil {
		s.logger.LogError("tool invocation failed", dispatchErr, map[string]interface{}{
			"tool":       toolReq.Name,
			"kind":       dispatchErr.Kind.String(),
			"request_id": req.ID,
		})
		s.sendDispatchError(req.ID, dispatchErr)
		return nil
	}

	toolResp, err := toolCallResult(result)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InternalError, "Internal error", err.Error())
		return nil
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolResp,
	}
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Round-trip through JSON to handle both map[string]interface{} and
	// already-parsed structs.
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// toolCallResult renders a validated handler result as an MCP tool
// response with a single JSON text block.
func toolCallResult(result map[string]interface{}) (*domain.ToolResponse, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &domain.ToolResponse{
		Content: []domain.ContentBlock{
			{Type: "text", Text: string(data)},
		},
	}, nil
}

// sendDispatchError maps a DispatchError to the corresponding JSON-RPC
// error by its kind. Kinds are typed values, so the mapping is a plain
// switch; validation violations travel in the error data.
func (s *Server) sendDispatchError(id interface{}, dispatchErr *DispatchError) {
	var code int
	var message string

	switch dispatchErr.Kind {
	case ErrUnknownTool:
		code = domain.MethodNotFound
		message = "Tool not found"
	case ErrInputValidation:
		code = domain.InvalidParams
		message = "Invalid arguments"
	case ErrOutputValidation:
		code = domain.OutputContractError
		message = "Output contract violation"
	case ErrUpstream:
		code = domain.UpstreamError
		message = "Upstream error"
	default:
		code = domain.InternalError
		message = "Internal error"
	}

	data := map[string]interface{}{
		"kind":   dispatchErr.Kind.String(),
		"detail": dispatchErr.Message,
	}
	if dispatchErr.Err != nil {
		data["cause"] = dispatchErr.Err.Error()
	}
	if len(dispatchErr.Violations) > 0 {
		data["violations"] = dispatchErr.Violations
	}

	s.sendErrorResponse(id, code, message, data)
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send error response", err, map[string]interface{}{
			"request_id": id,
			"error_code": code,
		})
	}
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}
