// Package shell wires the chat shell together: embedded NATS, the
// transcript store, the session's workspace context, the MCP sidecar, and
// the TUI program.
package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	natsserver "github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/syntax-syndicate/chatshell/internal/completion"
	"github.com/syntax-syndicate/chatshell/internal/config"
	ierr "github.com/syntax-syndicate/chatshell/internal/errors"
	"github.com/syntax-syndicate/chatshell/internal/logger"
	"github.com/syntax-syndicate/chatshell/internal/mcpserver"
	"github.com/syntax-syndicate/chatshell/internal/nats"
	"github.com/syntax-syndicate/chatshell/internal/transcript"
	"github.com/syntax-syndicate/chatshell/internal/tui"
	"github.com/syntax-syndicate/chatshell/internal/workspace"
)

// Options configures a shell run.
type Options struct {
	SessionName string // Session to open or create
	Workspace   string // Workspace override (default from config)
	Project     string // Project within the workspace
}

// Shell owns the runtime pieces of one chat session.
type Shell struct {
	cfg     *config.Config
	opts    Options
	ns      *natsserver.Server
	nc      *natsgo.Conn
	store   *transcript.Store
	session *workspace.Session
	mcp     *mcpserver.Server
	program *tea.Program
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// New creates a shell for the given configuration.
func New(cfg *config.Config, opts Options) (*Shell, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.Workspace == "" {
		opts.Workspace = cfg.Workspace
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Shell{
		cfg:    cfg,
		opts:   opts,
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Store returns the transcript store. Valid after Start.
func (s *Shell) Store() *transcript.Store {
	return s.store
}

// Session returns the active session handle. Valid after Start.
func (s *Shell) Session() *workspace.Session {
	return s.session
}

// Start brings up NATS, the stores, and the MCP sidecar.
func (s *Shell) Start() error {
	if err := logger.Apply(s.cfg.LogLevel, s.cfg.LogFile); err != nil {
		logger.Warn("Ignoring log settings from config: %v", err)
	}
	logger.Info("Starting shell for session '%s'", s.opts.SessionName)

	natsDir := filepath.Join(s.cfg.DataDir, "nats")
	if err := os.MkdirAll(natsDir, 0755); err != nil {
		return fmt.Errorf("failed to create NATS data directory: %w", err)
	}

	ns, err := nats.StartEmbedded(natsDir)
	if err != nil {
		return fmt.Errorf("failed to start NATS server: %w", err)
	}
	s.ns = ns

	nc, err := nats.ConnectInProcess(ns)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	s.nc = nc

	js, err := nats.CreateJetStream(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	stream, err := nats.SetupStream(s.ctx, js)
	if err != nil {
		return fmt.Errorf("failed to setup stream: %w", err)
	}
	s.store = transcript.NewStore(js, stream)

	// Workspace context: load or create the workspace, then the session.
	ws := workspace.Load(s.cfg.DataDir, s.opts.Workspace)
	if err := workspace.Save(s.cfg.DataDir, ws); err != nil {
		logger.Warn("Failed to persist workspace: %v", err)
	}
	s.session = workspace.OpenSession(s.cfg.DataDir, s.opts.SessionName, ws.Slug, s.opts.Project)
	if err := workspace.SaveSession(s.cfg.DataDir, s.session); err != nil {
		logger.Warn("Failed to persist session: %v", err)
	}

	s.mcp = mcpserver.New(s.store, s.session, completion.DefaultCommands())
	if _, err := s.mcp.Start(s.ctx); err != nil {
		logger.Warn("MCP sidecar failed to start: %v", err)
		s.mcp = nil
	}

	logger.Info("Shell started")
	return nil
}

// Run blocks in the TUI until the user quits.
func (s *Shell) Run() error {
	mcpURL := ""
	if s.mcp != nil {
		mcpURL = s.mcp.URL()
	}

	app := tui.NewApp(s.ctx, s.cfg, s.store, s.session, mcpURL)
	s.program = tea.NewProgram(app)

	defer close(s.done)
	if _, err := s.program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

// Stop shuts everything down. Idempotent.
func (s *Shell) Stop() error {
	if s.stopped {
		return nil
	}
	s.stopped = true

	logger.Info("Stopping shell for session '%s'", s.opts.SessionName)
	multiErr := &ierr.MultiError{}

	s.cancel()

	if s.program != nil {
		s.program.Quit()
		select {
		case <-s.done:
			logger.Debug("TUI stopped")
		case <-time.After(2 * time.Second):
			logger.Warn("TUI shutdown timed out after 2s")
			multiErr.Append(ierr.NewTransientError("TUI shutdown", fmt.Errorf("timed out after 2s")))
		}
		s.program = nil
	}

	if s.mcp != nil {
		if err := s.mcp.Stop(); err != nil {
			multiErr.Append(fmt.Errorf("MCP shutdown failed: %w", err))
		}
		s.mcp = nil
	}

	if err := nats.Shutdown(s.nc, s.ns); err != nil {
		multiErr.Append(fmt.Errorf("NATS shutdown failed: %w", err))
	}
	s.nc = nil
	s.ns = nil

	logger.Info("Shell stopped")
	return multiErr.ErrorOrNil()
}
