package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MCP protocol structures
type MCPRequest struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

type MCPResponse struct {
	ID     string    `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *MCPError `json:"error,omitempty"`
}

type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// JSON-RPC and tool error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeRunFailed      = -32004
	codeUnavailable    = -32001
)

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req MCPRequest
	if tooLarge, err := decodeBody(w, r, &req); err != nil {
		mcpRequestsTotal.WithLabelValues("", "error").Inc()
		if tooLarge {
			writeJSONResponse(w, http.StatusRequestEntityTooLarge,
				MCPResponse{Error: &MCPError{Code: codeInvalidRequest, Message: "Request too large"}})
			return
		}
		writeJSONResponse(w, http.StatusOK, MCPResponse{Error: &MCPError{Code: codeParseError, Message: "Parse error"}})
		return
	}

	var response MCPResponse
	switch req.Method {
	case "tools/call":
		response = s.handleToolCall(r, req)
	case "tools/list":
		response = MCPResponse{Result: map[string]any{"tools": availableTools()}}
	default:
		response = MCPResponse{Error: &MCPError{Code: codeMethodNotFound, Message: "Method not found"}}
	}
	response.ID = req.ID

	status := "success"
	if response.Error != nil {
		status = "error"
	}
	mcpRequestsTotal.WithLabelValues(req.Method, status).Inc()
	s.log.WithField("method", req.Method).WithField("status", status).
		WithField("duration", time.Since(start)).Debug("MCP request")

	writeJSONResponse(w, http.StatusOK, response)
}

func (s *Server) handleToolCall(r *http.Request, req MCPRequest) MCPResponse {
	toolName, ok := req.Params["name"].(string)
	if !ok {
		return MCPResponse{Error: &MCPError{Code: codeInvalidParams, Message: "Invalid tool name"}}
	}
	arguments, _ := req.Params["arguments"].(map[string]any)

	switch toolName {
	case "ask_question":
		question, _ := arguments["question"].(string)
		question = strings.TrimSpace(question)
		if question == "" {
			return MCPResponse{Error: &MCPError{Code: codeInvalidParams, Message: "question is required"}}
		}
		state, err := s.ask(r.Context(), question)
		if err != nil {
			_, body := s.runFailure(err)
			msg := body.Error
			if body.Stage != "" {
				msg = fmt.Sprintf("stage %s failed: %s", body.Stage, body.Error)
			}
			return MCPResponse{Error: &MCPError{Code: codeRunFailed, Message: msg}}
		}
		return MCPResponse{Result: newQueryResponse(state)}

	case "query_stats":
		if s.stats == nil {
			return MCPResponse{Error: &MCPError{Code: codeUnavailable, Message: errStatsUnavailable.Error()}}
		}
		kind, _ := arguments["kind"].(string)
		var (
			result any
			err    error
		)
		switch kind {
		case "", "categories":
			result, err = s.stats.CategoryCounts(r.Context())
		case "monthly":
			result, err = s.stats.MonthlyCounts(r.Context())
		case "totals":
			result, err = s.stats.MonthlyTotals(r.Context())
		default:
			return MCPResponse{Error: &MCPError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown stats kind %q", kind)}}
		}
		if err != nil {
			return MCPResponse{Error: &MCPError{Code: codeRunFailed, Message: err.Error()}}
		}
		return MCPResponse{Result: map[string]any{"kind": kindOrDefault(kind), "counts": result}}

	default:
		return MCPResponse{Error: &MCPError{Code: codeMethodNotFound, Message: "Tool not found"}}
	}
}

func kindOrDefault(kind string) string {
	if kind == "" {
		return "categories"
	}
	return kind
}

func handleToolsList(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"tools": availableTools()})
}

func availableTools() []Tool {
	return []Tool{
		{
			Name:        "ask_question",
			Description: "Answer a question from the document store, falling back to web search",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "The question to answer",
					},
				},
				"required": []string{"question"},
			},
		},
		{
			Name:        "query_stats",
			Description: "Get counts of asked questions by category or by month",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"kind": map[string]any{
						"type":        "string",
						"description": "categories (default), monthly per category, or totals per month",
						"enum":        []string{"categories", "monthly", "totals"},
					},
				},
			},
		},
	}
}
