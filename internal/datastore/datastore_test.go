package datastore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDSN returns a unique in-memory SQLite DSN for each test.
func testDSN(testID string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", testID)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "nbdhcp.db?_pragma=foreign_keys(1)", WithForeignKeys("nbdhcp.db"))
	assert.Equal(t,
		"file:x?mode=memory&_pragma=foreign_keys(1)",
		WithForeignKeys("file:x?mode=memory"))

	already := "file:x?_pragma=foreign_keys(0)"
	assert.Equal(t, already, WithForeignKeys(already))
}

func TestWithPragma(t *testing.T) {
	dsn := WithPragma("nbdhcp.db", "busy_timeout", "5000")
	assert.Equal(t, "nbdhcp.db?_pragma=busy_timeout(5000)", dsn)

	dsn = WithPragma(dsn, "journal_mode", "WAL")
	assert.Equal(t, "nbdhcp.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)

	assert.Equal(t, dsn, WithPragma(dsn, "busy_timeout", "100"))
}

func TestNew_InMemory(t *testing.T) {
	ds, err := New(testDSN("TestNew_InMemory"))
	require.NoError(t, err)
	defer ds.Close()

	for _, table := range []string{"ip_addresses", "dhcp_servers", "dhcp_reservations"} {
		var count int
		err := ds.DB.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "expected table %s", table)
	}
}

func TestNew_ForeignKeysEnabledOnEveryConnection(t *testing.T) {
	ds, err := New(testDSN("TestNew_ForeignKeysEnabledOnEveryConnection"))
	require.NoError(t, err)
	defer ds.Close()

	ds.DB.SetMaxOpenConns(4)
	conns := make([]interface{ Close() error }, 0, 3)
	for i := 0; i < 3; i++ {
		conn, err := ds.DB.Conn(context.Background())
		require.NoError(t, err)
		conns = append(conns, conn)

		var enabled int
		require.NoError(t, conn.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&enabled))
		assert.Equal(t, 1, enabled)

		var timeout int
		require.NoError(t, conn.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout)
	}
	for _, c := range conns {
		c.Close()
	}
}

func TestNew_CascadeDeletes(t *testing.T) {
	ds, err := New(testDSN("TestNew_CascadeDeletes"))
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.DB.Exec("INSERT INTO ip_addresses (id, address) VALUES (1, '192.168.1.10/24')")
	require.NoError(t, err)
	_, err = ds.DB.Exec("INSERT INTO dhcp_servers (id, name, api_token, api_url) VALUES (1, 'srv', 'tok', 'https://example.com/api')")
	require.NoError(t, err)
	_, err = ds.DB.Exec("INSERT INTO dhcp_reservations (ip_address_id, mac_address, dhcp_server_id) VALUES (1, 'aa:bb:cc:dd:ee:ff', 1)")
	require.NoError(t, err)

	_, err = ds.DB.Exec("DELETE FROM dhcp_servers WHERE id = 1")
	require.NoError(t, err)

	var count int
	require.NoError(t, ds.DB.QueryRow("SELECT COUNT(*) FROM dhcp_reservations").Scan(&count))
	assert.Equal(t, 0, count)
}
