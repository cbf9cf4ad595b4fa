// Package workspace persists the workspace / project / chat session
// context as JSON files under the data directory.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"

	"github.com/syntax-syndicate/chatshell/internal/logger"
)

// Workspace groups related projects under one name.
type Workspace struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Projects  []string  `json:"projects"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is one working directory inside a workspace.
type Project struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Path      string    `json:"path"`
	Workspace string    `json:"workspace"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates a workspace with a slugified directory name.
func New(name string) *Workspace {
	s := slug.Make(name)
	if s == "" {
		s = "default"
	}
	return &Workspace{
		Name:      name,
		Slug:      s,
		CreatedAt: time.Now(),
	}
}

// AddProject registers a project in the workspace. Adding the same slug
// twice is a no-op.
func (w *Workspace) AddProject(p *Project) {
	for _, existing := range w.Projects {
		if existing == p.Slug {
			return
		}
	}
	p.Workspace = w.Slug
	w.Projects = append(w.Projects, p.Slug)
}

// NewProject creates a project rooted at path.
func NewProject(name, path string) *Project {
	s := slug.Make(name)
	if s == "" {
		s = "project"
	}
	return &Project{
		Name:      name,
		Slug:      s,
		Path:      path,
		CreatedAt: time.Now(),
	}
}

// Load reads a workspace from dataDir. A missing or corrupt file yields a
// fresh workspace with the given name rather than an error.
func Load(dataDir, name string) *Workspace {
	path := filepath.Join(dataDir, "workspaces", slug.Make(name)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read workspace file: %v", err)
		}
		return New(name)
	}

	var w Workspace
	if err := json.Unmarshal(data, &w); err != nil {
		logger.Warn("Failed to parse workspace JSON: %v", err)
		return New(name)
	}
	return &w
}

// Save writes the workspace to dataDir, creating directories as needed.
func Save(dataDir string, w *Workspace) error {
	dir := filepath.Join(dataDir, "workspaces")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling workspace: %w", err)
	}

	path := filepath.Join(dir, w.Slug+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing workspace file: %w", err)
	}

	logger.Debug("Workspace saved to %s", path)
	return nil
}
