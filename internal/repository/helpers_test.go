package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/testutil"
)

type fixture struct {
	db           *sql.DB
	ips          IPAddressRepository
	servers      DHCPServerRepository
	reservations DHCPReservationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, cleanup := testutil.SetupTestDBWithMigrations(t, t.Name())
	f := &fixture{
		db:           db,
		ips:          NewIPAddressRepository(db),
		servers:      NewDHCPServerRepository(db),
		reservations: NewDHCPReservationRepository(db),
	}
	t.Cleanup(func() {
		_ = f.reservations.Close()
		cleanup()
	})
	return f
}

func (f *fixture) createIP(t *testing.T, address string) domain.IPAddress {
	t.Helper()
	ip, err := f.ips.Save(context.Background(), domain.IPAddress{Address: address})
	require.NoError(t, err)
	return ip
}

func (f *fixture) createServer(t *testing.T, name, apiURL string) domain.DHCPServer {
	t.Helper()
	s, err := f.servers.Save(context.Background(), domain.NewDHCPServer(name, "testtoken123", apiURL, nil))
	require.NoError(t, err)
	return s
}

func (f *fixture) createReservation(t *testing.T, ipID, serverID int64, mac string) domain.DHCPReservation {
	t.Helper()
	r, err := f.reservations.Save(context.Background(), domain.DHCPReservation{
		IPAddressID:  ipID,
		DHCPServerID: serverID,
		MACAddress:   mac,
	})
	require.NoError(t, err)
	return r
}
