// Package gitops versions a sebimport workspace with the git binary.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits ledger changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// env sets the committer to the author so commits work without a global
// git identity.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := git(dir, nil, "init")
	return err
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	return commit(dir, message, author, "-A")
}

// CommitPaths stages only paths (relative to dir) and commits them. Returns
// an empty hash when none of them changed.
func CommitPaths(dir, message string, author Author, paths ...string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	status, err := git(dir, nil, args...)
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", nil
	}
	return commit(dir, message, author, append([]string{"-A", "--"}, paths...)...)
}

func commit(dir, message string, author Author, addArgs ...string) (string, error) {
	if _, err := git(dir, nil, append([]string{"add"}, addArgs...)...); err != nil {
		return "", err
	}
	if _, err := git(dir, author.env(), "commit", "-m", message, "--author", author.String()); err != nil {
		return "", err
	}
	return git(dir, nil, "rev-parse", "--short", "HEAD")
}

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
