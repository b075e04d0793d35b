package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestInitCommand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")

	require.NoError(t, runCommand(t, "init", "--root", root))

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(root, "lair.json"))
	require.NoError(t, err, "init must create the status file")

	// Idempotent.
	require.NoError(t, runCommand(t, "init", "--root", root))
}

func TestInitCommand_RootConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, os.WriteFile(path, []byte("file in the way"), 0o644))

	err := runCommand(t, "init", "--root", path)
	assert.Error(t, err)
}

func TestStatusCommand(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))
	require.NoError(t, runCommand(t, "status", "--root", root))
}

func TestStatusCommand_Corrupted(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))

	// An orphan directory makes the lair corrupt.
	require.NoError(t, os.Mkdir(filepath.Join(root, "orphaned"), 0o755))
	assert.Error(t, runCommand(t, "status", "--root", root))
}

func TestListCommand_Empty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))
	require.NoError(t, runCommand(t, "list", "--root", root))
	require.NoError(t, runCommand(t, "list", "--root", root, "--json"))
}

func TestGetCommand_NotDerived(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))
	assert.Error(t, runCommand(t, "get", "nonexistent", "--root", root))
}

func TestRmCommand_NotDerived(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))
	assert.Error(t, runCommand(t, "rm", "nonexistent", "--root", root))
}

func TestPruneCommand_Empty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "lair")
	require.NoError(t, runCommand(t, "init", "--root", root))
	require.NoError(t, runCommand(t, "prune", "--root", root))
}
