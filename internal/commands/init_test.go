package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSebimport(t, dir, "init", dir)
	require.NoError(t, err)

	expectedDirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"ledger",
		"logs",
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	for _, f := range []string{"ledger/accounts.beancount", "ledger/transactions.beancount", "import/.gitkeep"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "%s should exist", f)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSebimport(t, dir, "init", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "sebimport.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: SEB")
	assert.Contains(t, contents, "account_prefix: Assets:SEB")
	assert.Contains(t, contents, "path: ledger/transactions.beancount")
}

func TestInit_GitRepo(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSebimport(t, dir, "init", dir)
	require.NoError(t, err)

	// .git directory should exist.
	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	// git log should have an init commit.
	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init:")

	// Verify author.
	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	out, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "sebimport <sebimport@localhost>")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runSebimport(t, dir, "init", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "logs/")
}

func TestInit_NoGit(t *testing.T) {
	dir := newWorkspace(t)
	_, err := os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err))
}

func TestInit_RefusesExistingWorkspace(t *testing.T) {
	dir := newWorkspace(t)
	_, stderr, err := runSebimport(t, dir, "init", "--no-git")
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")
}
