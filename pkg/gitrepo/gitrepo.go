// Package gitrepo manages the local clones of tracked repositories and
// answers commit-level questions through the git CLI.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Manager keeps one bare-checkout clone per tracked project under DataDir.
type Manager struct {
	DataDir string
}

func NewManager(dataDir string) *Manager {
	return &Manager{DataDir: dataDir}
}

// Path returns the local clone path for a project.
func (m *Manager) Path(owner, name string) string {
	return filepath.Join(m.DataDir, owner, name)
}

// Ensure clones the repository when missing and fetches otherwise.
func (m *Manager) Ensure(ctx context.Context, owner, name, cloneURL string) error {
	path := m.Path(owner, name)
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return m.Fetch(ctx, owner, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}
	if _, err := git(ctx, "clone", cloneURL, path); err != nil {
		return fmt.Errorf("clone %s/%s: %w", owner, name, err)
	}
	return nil
}

// Fetch updates the clone from its remote.
func (m *Manager) Fetch(ctx context.Context, owner, name string) error {
	if _, err := git(ctx, "-C", m.Path(owner, name), "fetch", "--all", "--quiet"); err != nil {
		return fmt.Errorf("fetch %s/%s: %w", owner, name, err)
	}
	return nil
}

// Remove deletes the local clone; missing clones are not an error.
func (m *Manager) Remove(owner, name string) error {
	return os.RemoveAll(m.Path(owner, name))
}

// Parents returns the parent hashes of a commit.
func (m *Manager) Parents(ctx context.Context, owner, name, hash string) ([]string, error) {
	out, err := git(ctx, "-C", m.Path(owner, name), "rev-list", "--parents", "-n", "1", hash)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", hash, err)
	}
	fields := strings.Fields(out)
	if len(fields) < 1 {
		return nil, fmt.Errorf("resolve %s: empty rev-list output", hash)
	}
	return fields[1:], nil
}

// ChangedFiles lists the files a commit touched relative to its first parent.
func (m *Manager) ChangedFiles(ctx context.Context, owner, name, hash string) ([]string, error) {
	out, err := git(ctx, "-C", m.Path(owner, name), "show", "--pretty=", "--name-only", hash)
	if err != nil {
		return nil, fmt.Errorf("changed files of %s: %w", hash, err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// FileAt returns the contents of a file at a revision. The boolean is false
// when the file does not exist in that revision (added or deleted files).
func (m *Manager) FileAt(ctx context.Context, owner, name, rev, path string) (string, bool, error) {
	repoPath := m.Path(owner, name)
	spec := fmt.Sprintf("%s:%s", rev, path)
	if _, err := git(ctx, "-C", repoPath, "cat-file", "-e", spec); err != nil {
		return "", false, nil
	}
	out, err := git(ctx, "-C", repoPath, "show", spec)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", spec, err)
	}
	return out, true, nil
}

func git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
