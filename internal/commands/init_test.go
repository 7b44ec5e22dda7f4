package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runYuuka executes the root command in-process and returns its stdout.
func runYuuka(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// newLedger initializes a ledger in a fresh working directory.
func newLedger(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	_, err := runYuuka(t, append([]string{"init"}, args...)...)
	require.NoError(t, err)
	return dir
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := newLedger(t)

	for _, d := range []string{"data", "inbox"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	_, err := os.Stat(filepath.Join(dir, "data", "yuuka.db"))
	assert.NoError(t, err)
}

func TestInit_Config(t *testing.T) {
	dir := newLedger(t, "--owner", "u1")

	data, err := os.ReadFile(filepath.Join(dir, "yuuka.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: data/yuuka.db")
	assert.Contains(t, contents, "default: u1")
	assert.Contains(t, contents, "name: Income")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	newLedger(t)

	_, err := runYuuka(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runYuuka(t, "init", "--force")
	assert.NoError(t, err)
}

func TestInit_Chart(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := runYuuka(t, "init", "--chart")
	require.Error(t, err)

	out, err := runYuuka(t, "init", "--owner", "u1", "--chart")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 10 account groups")

	out, err = runYuuka(t, "accounts", "list")
	require.NoError(t, err)
	for _, name := range []string{"Income *", "Cash *", "GoPay", "Credit Card", "Food"} {
		assert.Contains(t, out, name)
	}
}

func TestInit_Directory(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := runYuuka(t, "init", "ledger")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join("ledger", "yuuka.yaml"))
	assert.NoError(t, err)
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
