package migrations

import (
	"database/sql"
)

// GetIndexMigrations returns the lookup index migrations
func GetIndexMigrations() []Migration {
	return []Migration{
		{
			Version: 2,
			Name:    "add_reservation_indices",
			Up: func(tx *sql.Tx) error {
				// Foreign key columns are scanned on every cascading delete
				indices := []string{
					"CREATE INDEX IF NOT EXISTS idx_dhcp_reservations_ip_address_id ON dhcp_reservations(ip_address_id)",
					"CREATE INDEX IF NOT EXISTS idx_dhcp_reservations_dhcp_server_id ON dhcp_reservations(dhcp_server_id)",
					"CREATE INDEX IF NOT EXISTS idx_dhcp_reservations_status ON dhcp_reservations(status)",
				}

				for _, indexSQL := range indices {
					if _, err := tx.Exec(indexSQL); err != nil {
						return err
					}
				}

				return nil
			},
			Down: func(tx *sql.Tx) error {
				indices := []string{
					"DROP INDEX IF EXISTS idx_dhcp_reservations_ip_address_id",
					"DROP INDEX IF EXISTS idx_dhcp_reservations_dhcp_server_id",
					"DROP INDEX IF EXISTS idx_dhcp_reservations_status",
				}

				for _, dropSQL := range indices {
					if _, err := tx.Exec(dropSQL); err != nil {
						return err
					}
				}

				return nil
			},
		},
	}
}
