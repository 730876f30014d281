package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestConfig points the CLI at a fresh data directory for one test.
func withTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RAGTIME_DATA_DIR", dir)
	t.Setenv("RAGTIME_STORE_PATH", filepath.Join(dir, "ragtime.db"))
	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })
	return dir
}

func TestStatusCmd_EmptyStore(t *testing.T) {
	// Given: a fresh data directory with no indexed documents
	withTestConfig(t)
	cmd := newStatusCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	cmd.SetContext(t.Context())

	// When: running status
	err := cmd.Execute()

	// Then: it reports zero documents and suggests indexing
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Documents: 0")
	assert.Contains(t, output, "Nothing indexed yet")
}

func TestSessionsCmd_EmptyStore(t *testing.T) {
	// Given: a fresh data directory
	withTestConfig(t)
	cmd := newSessionsCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	cmd.SetContext(t.Context())

	// When: listing sessions
	err := cmd.Execute()

	// Then: it reports none
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No chat sessions recorded")
}

func TestSessionsClearCmd_UnknownSession(t *testing.T) {
	// Given: a fresh data directory
	withTestConfig(t)
	cmd := newSessionsCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"clear", "no-such-session"})
	cmd.SetContext(t.Context())

	// When: clearing a session that never existed
	err := cmd.Execute()

	// Then: it succeeds as a no-op
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Cleared history for session no-such-session")
}
