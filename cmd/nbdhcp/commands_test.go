package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nbdhcp.db")

	out, err := runCmd(t, context.Background(), "migrate", "--db-path", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")

	// Running again is a no-op
	out, err = runCmd(t, context.Background(), "migrate", "--db-path", dbPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")
}

func TestMigrateCommand_RollbackTo(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nbdhcp.db")

	out, err := runCmd(t, context.Background(), "migrate", "--db-path", dbPath, "--log-level", "error", "--rollback-to", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
}

func TestMigrateCommand_EnvConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "from-env.db")
	t.Setenv("NBDHCP_DB_PATH", dbPath)
	t.Setenv("NBDHCP_LOG_LEVEL", "error")

	_, err := runCmd(t, context.Background(), "migrate")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)
}

func TestMigrateCommand_MissingConfigFile(t *testing.T) {
	_, err := runCmd(t, context.Background(), "migrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nbdhcp.db")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runCmd(t, ctx, "serve", "--db-path", dbPath, "--port", "0", "--log-level", "error")
	assert.NoError(t, err)
}

func TestRootCommand_UnknownLogLevel(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nbdhcp.db")

	_, err := runCmd(t, context.Background(), "migrate", "--db-path", dbPath, "--log-level", "verbos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	assert.NoFileExists(t, dbPath)
}
