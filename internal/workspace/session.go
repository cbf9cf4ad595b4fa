package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/xid"

	"github.com/syntax-syndicate/chatshell/internal/logger"
)

// Session is one chat conversation inside a project. It doubles as the
// opaque context handle passed to completion providers and wizard seeds:
// providers read from it, never write.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Workspace string    `json:"workspace"`
	Project   string    `json:"project"`
	CreatedAt time.Time `json:"created_at"`

	// Refs are the @-completable context references (file paths, agent
	// ids) indexed for this session.
	Refs []string `json:"refs,omitempty"`

	// Entities are the #-completable semantic entity names.
	Entities []string `json:"entities,omitempty"`
}

// NewSession creates a session in the given workspace and project.
func NewSession(name, ws, project string) *Session {
	s := slug.Make(name)
	if s == "" {
		s = "session"
	}
	return &Session{
		ID:        xid.New().String(),
		Name:      name,
		Slug:      s,
		Workspace: ws,
		Project:   project,
		CreatedAt: time.Now(),
	}
}

// ContextRefs exposes the @-completable references to providers.
func (s *Session) ContextRefs() []string { return s.Refs }

// EntityNames exposes the #-completable entity names to providers.
func (s *Session) EntityNames() []string { return s.Entities }

// OpenSession loads the session for name, creating it in the given
// workspace when it does not exist yet.
func OpenSession(dataDir, name, ws, project string) *Session {
	if s := LoadSession(dataDir, slug.Make(name)); s != nil {
		return s
	}
	return NewSession(name, ws, project)
}

// LoadSession reads a session by slug. Missing or corrupt files yield nil.
func LoadSession(dataDir, sessionSlug string) *Session {
	path := filepath.Join(dataDir, "sessions", sessionSlug+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read session file: %v", err)
		}
		return nil
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("Failed to parse session JSON: %v", err)
		return nil
	}
	return &s
}

// SaveSession writes the session to dataDir, creating directories as
// needed.
func SaveSession(dataDir string, s *Session) error {
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	path := filepath.Join(dir, s.Slug+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}

	logger.Debug("Session saved to %s", path)
	return nil
}
