// Package mcpserver exposes the chat shell's context index and transcript
// to external agent tooling over the MCP protocol.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/syntax-syndicate/chatshell/internal/logger"
	"github.com/syntax-syndicate/chatshell/internal/transcript"
	"github.com/syntax-syndicate/chatshell/internal/workspace"
)

// Server manages an embedded MCP HTTP server exposing transcript and
// context tools for the active session.
type Server struct {
	store      *transcript.Store
	session    *workspace.Session
	commands   []string
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
	mu         sync.Mutex
}

// New creates a server for the given session. Not started until Start.
func New(store *transcript.Store, sess *workspace.Session, commands []string) *Server {
	return &Server{
		store:    store,
		session:  sess,
		commands: commands,
	}
}

// Start starts the MCP HTTP server on a random loopback port and returns
// the port number.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"chatshell-context",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mcpHandler := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux.Handle("/mcp", mcpHandler)

	s.stdServer = &http.Server{Handler: mux}
	s.httpServer = mcpHandler

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}

	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	s.mcpServer = nil
	return nil
}

// URL returns the HTTP URL for the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}

// registerTools registers the context and transcript tools.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("transcript_get",
			mcp.WithDescription("Get the current session's chat transcript as JSON"),
		),
		s.handleTranscriptGet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("message_add",
			mcp.WithDescription("Append a message to the session transcript"),
			mcp.WithString("role", mcp.Required(),
				mcp.Description("Message role: user, assistant, or system")),
			mcp.WithString("content", mcp.Required(),
				mcp.Description("Message text")),
		),
		s.handleMessageAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("context_list",
			mcp.WithDescription("List the session's referencable context: files, agents, and entities"),
		),
		s.handleContextList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("command_list",
			mcp.WithDescription("List the slash commands the chat input accepts"),
		),
		s.handleCommandList,
	)
}
