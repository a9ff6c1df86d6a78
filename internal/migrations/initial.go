package migrations

import (
	"database/sql"
)

// GetInitialMigrations returns all initial migrations
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_dhcp_tables",
			Up: func(tx *sql.Tx) error {
				statements := []string{
					`CREATE TABLE IF NOT EXISTS ip_addresses (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						address TEXT NOT NULL UNIQUE,
						dns_name TEXT NOT NULL DEFAULT '',
						created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE TABLE IF NOT EXISTS dhcp_servers (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						name TEXT NOT NULL UNIQUE,
						api_token TEXT NOT NULL,
						api_url TEXT NOT NULL UNIQUE,
						ssl_verify INTEGER NOT NULL DEFAULT 1,
						created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
					)`,
					// mac_address uniqueness ignores case; the repository also stores it lower-cased
					`CREATE TABLE IF NOT EXISTS dhcp_reservations (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						ip_address_id INTEGER NOT NULL,
						mac_address TEXT NOT NULL COLLATE NOCASE UNIQUE,
						status TEXT NOT NULL DEFAULT 'pending',
						dhcp_server_id INTEGER NOT NULL,
						description TEXT NOT NULL DEFAULT '',
						created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
						FOREIGN KEY (ip_address_id) REFERENCES ip_addresses(id) ON DELETE CASCADE,
						FOREIGN KEY (dhcp_server_id) REFERENCES dhcp_servers(id) ON DELETE CASCADE
					)`,
				}

				for _, stmt := range statements {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
			Down: func(tx *sql.Tx) error {
				// Drop tables in reverse order due to foreign key constraints
				for _, table := range []string{"dhcp_reservations", "dhcp_servers", "ip_addresses"} {
					if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
