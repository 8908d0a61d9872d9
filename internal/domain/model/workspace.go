package model

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the temporary working directory owned by exactly one job.
// Its name is derived from the job ID, so concurrent jobs never collide.
type Workspace struct {
	jobID string
	dir   string
}

// NewWorkspace creates the working directory for the given job under root.
// An empty root falls back to the system temp directory.
func NewWorkspace(root, jobID string) (*Workspace, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID cannot be empty")
	}

	dir, err := os.MkdirTemp(root, fmt.Sprintf("job-%s-", jobID))
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	return &Workspace{
		jobID: jobID,
		dir:   dir,
	}, nil
}

// Join constructs a path by joining the workspace path with the provided elements.
func (w *Workspace) Join(elem ...string) string {
	elements := append([]string{w.dir}, elem...)
	return filepath.Join(elements...)
}

// Remove deletes the workspace directory and all its contents. Removing an
// already-removed workspace is a no-op.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	return nil
}

// Dir returns the absolute path to the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// JobID returns the ID of the job that owns this workspace.
func (w *Workspace) JobID() string {
	return w.jobID
}

// Exists checks if the workspace directory still exists on the filesystem.
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.dir)
	return err == nil && info.IsDir()
}
