package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	require.NotNil(t, config)
	assert.Equal(t, "~/nbdhcp/data/nbdhcp.db", config.DBPath)
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, "info", config.LogLevel)
}

func TestConfig_expandPath(t *testing.T) {
	config := NewConfig()

	expanded := config.expandPath("~/test/path")
	assert.False(t, strings.HasPrefix(expanded, "~/"))
	assert.True(t, strings.HasSuffix(expanded, filepath.Join("test", "path")))

	assert.Equal(t, "/absolute/path", config.expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", config.expandPath("relative/path"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "nbdhcp.yaml")
	require.NoError(t, os.WriteFile(file, []byte("db_path: /from/file.db\nport: \"9000\"\nlog_level: debug\n"), 0644))

	// Environment beats the file
	t.Setenv("NBDHCP_PORT", "9100")

	// Flags beat the environment
	v := viper.New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=error"}))
	require.NoError(t, v.BindPFlag("log_level", flags.Lookup("log-level")))

	cfg, err := Load(v, file)
	require.NoError(t, err)
	assert.Equal(t, "/from/file.db", cfg.DBPath)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestConfig_InitializeDatabase_Success(t *testing.T) {
	config := NewConfig()
	config.DBPath = filepath.Join(t.TempDir(), "nested", "path", "test.db")

	ds, err := config.InitializeDatabase()
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.DB.Ping())

	_, err = os.Stat(filepath.Dir(config.DBPath))
	assert.NoError(t, err, "expected database directory to be created")

	var fkEnabled bool
	require.NoError(t, ds.DB.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled))
	assert.True(t, fkEnabled)

	var journalMode string
	require.NoError(t, ds.DB.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var count int
	require.NoError(t, ds.DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='dhcp_reservations'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestConfig_InitializeDatabase_Reopen(t *testing.T) {
	config := NewConfig()
	config.DBPath = filepath.Join(t.TempDir(), "test.db")

	ds, err := config.InitializeDatabase()
	require.NoError(t, err)
	_, err = ds.DB.Exec("INSERT INTO dhcp_servers (name, api_token, api_url) VALUES ('srv', 'tok', 'https://example.com')")
	require.NoError(t, err)
	require.NoError(t, ds.Close())

	ds, err = config.InitializeDatabase()
	require.NoError(t, err)
	defer ds.Close()

	var count int
	require.NoError(t, ds.DB.QueryRow("SELECT COUNT(*) FROM dhcp_servers").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestConfig_InitializeDatabase_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	config := NewConfig()
	config.DBPath = filepath.Join(blocker, "sub", "nbdhcp.db")

	_, err := config.InitializeDatabase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create database directory")
}

func TestConnectionDSN(t *testing.T) {
	dsn := connectionDSN("/var/lib/nbdhcp/nbdhcp.db")
	assert.True(t, strings.HasPrefix(dsn, "/var/lib/nbdhcp/nbdhcp.db?_pragma=busy_timeout(5000)&"))
	assert.Contains(t, dsn, "_pragma=journal_mode(WAL)")
	assert.Contains(t, dsn, "_pragma=synchronous(NORMAL)")
}

func TestConfig_InitializeDatabase_PragmasOnEveryConnection(t *testing.T) {
	config := NewConfig()
	config.DBPath = filepath.Join(t.TempDir(), "test.db")

	ds, err := config.InitializeDatabase()
	require.NoError(t, err)
	defer ds.Close()

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, 4)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for i := 0; i < 4; i++ {
		conn, err := ds.DB.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)

		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)

		var synchronous int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA synchronous").Scan(&synchronous))
		assert.Equal(t, 1, synchronous, "expected NORMAL")
	}
}

func TestConfig_InitializeDatabase_ConcurrentWrites(t *testing.T) {
	config := NewConfig()
	config.DBPath = filepath.Join(t.TempDir(), "test.db")

	ds, err := config.InitializeDatabase()
	require.NoError(t, err)
	defer ds.Close()

	repo := repository.NewDHCPServerRepository(ds.DB)
	ctx := context.Background()

	const writers = 200
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Save(ctx, domain.NewDHCPServer(
				fmt.Sprintf("kea-%d", i), "token", fmt.Sprintf("https://kea-%d.example.com/api", i), nil))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	servers, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, writers)
}
