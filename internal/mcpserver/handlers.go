package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleTranscriptGet returns the replayed session transcript as JSON.
func (s *Server) handleTranscriptGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.store.LoadState(ctx, s.session.Slug)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to load transcript: %v", err)), nil
	}

	output, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal transcript: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// handleMessageAdd appends one message to the transcript.
func (s *Server) handleMessageAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultText("error: no arguments provided"), nil
	}

	role, ok := args["role"].(string)
	if !ok || role == "" {
		return mcp.NewToolResultText("error: missing or empty 'role' parameter"), nil
	}
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return mcp.NewToolResultText("error: missing or empty 'content' parameter"), nil
	}

	msg, err := s.store.MessageAdd(ctx, s.session.Slug, role, content)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Message %s added", msg.ID)), nil
}

// handleContextList lists the session's referencable context.
func (s *Server) handleContextList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := map[string]any{
		"workspace": s.session.Workspace,
		"project":   s.session.Project,
		"refs":      s.session.ContextRefs(),
		"entities":  s.session.EntityNames(),
	}
	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal context: %v", err)), nil
	}
	return mcp.NewToolResultText(string(output)), nil
}

// handleCommandList lists the registered slash commands.
func (s *Server) handleCommandList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if len(s.commands) == 0 {
		return mcp.NewToolResultText("No commands registered"), nil
	}
	lines := make([]string, len(s.commands))
	for i, cmd := range s.commands {
		lines[i] = "/" + cmd
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}
