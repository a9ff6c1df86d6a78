package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
)

// DHCPServerRepository defines domain-specific operations for DHCP servers
type DHCPServerRepository interface {
	Repository[domain.DHCPServer, int64]
	FindByName(ctx context.Context, name string) (domain.DHCPServer, error)
	FindByAPIURL(ctx context.Context, apiURL string) (domain.DHCPServer, error)
}

// dhcpServerRepositoryImpl implements DHCPServerRepository
type dhcpServerRepositoryImpl struct {
	db DBTX
}

// NewDHCPServerRepository creates a new DHCP server repository
func NewDHCPServerRepository(db DBTX) DHCPServerRepository {
	return &dhcpServerRepositoryImpl{
		db: db,
	}
}

const dhcpServerColumns = `id, name, api_token, api_url, ssl_verify, created_at, updated_at`

func scanDHCPServer(row rowScanner) (domain.DHCPServer, error) {
	var s domain.DHCPServer
	err := row.Scan(&s.ID, &s.Name, &s.APIToken, &s.APIURL, &s.SSLVerify, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Save creates or updates a DHCP server. Name and API URL collisions are
// rejected by the database and surface as ErrDuplicate.
func (r *dhcpServerRepositoryImpl) Save(ctx context.Context, s domain.DHCPServer) (domain.DHCPServer, error) {
	if strings.TrimSpace(s.Name) == "" {
		return domain.DHCPServer{}, fmt.Errorf("DHCP server name is required: %w", ErrInvalidEntity)
	}
	if s.APIToken == "" {
		return domain.DHCPServer{}, fmt.Errorf("DHCP server API token is required: %w", ErrInvalidEntity)
	}
	if strings.TrimSpace(s.APIURL) == "" {
		return domain.DHCPServer{}, fmt.Errorf("DHCP server API URL is required: %w", ErrInvalidEntity)
	}

	if s.ID == 0 {
		return r.createDHCPServer(ctx, s)
	}
	return r.updateDHCPServer(ctx, s)
}

// createDHCPServer inserts a new DHCP server into the database
func (r *dhcpServerRepositoryImpl) createDHCPServer(ctx context.Context, s domain.DHCPServer) (domain.DHCPServer, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO dhcp_servers (name, api_token, api_url, ssl_verify)
		VALUES (?, ?, ?, ?)`,
		s.Name, s.APIToken, s.APIURL, s.SSLVerify)
	if err != nil {
		return domain.DHCPServer{}, fmt.Errorf("failed to create DHCP server: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.DHCPServer{}, fmt.Errorf("failed to get DHCP server ID: %w", err)
	}

	return r.FindByID(ctx, id)
}

// updateDHCPServer updates an existing DHCP server in the database
func (r *dhcpServerRepositoryImpl) updateDHCPServer(ctx context.Context, s domain.DHCPServer) (domain.DHCPServer, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE dhcp_servers
		SET name = ?, api_token = ?, api_url = ?, ssl_verify = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Name, s.APIToken, s.APIURL, s.SSLVerify, s.ID)
	if err != nil {
		return domain.DHCPServer{}, fmt.Errorf("failed to update DHCP server: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return domain.DHCPServer{}, fmt.Errorf("DHCP server with ID %d: %w", s.ID, err)
	}

	return r.FindByID(ctx, s.ID)
}

func (r *dhcpServerRepositoryImpl) findOne(ctx context.Context, what, where string, arg any) (domain.DHCPServer, error) {
	s, err := scanDHCPServer(r.db.QueryRowContext(ctx,
		`SELECT `+dhcpServerColumns+` FROM dhcp_servers WHERE `+where+` = ?`, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DHCPServer{}, fmt.Errorf("DHCP server with %s %v: %w", what, arg, ErrNotFound)
		}
		return domain.DHCPServer{}, fmt.Errorf("failed to find DHCP server: %w", err)
	}
	return s, nil
}

// FindByID finds a DHCP server by ID
func (r *dhcpServerRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.DHCPServer, error) {
	return r.findOne(ctx, "ID", "id", id)
}

// FindByName finds a DHCP server by name
func (r *dhcpServerRepositoryImpl) FindByName(ctx context.Context, name string) (domain.DHCPServer, error) {
	return r.findOne(ctx, "name", "name", name)
}

// FindByAPIURL finds a DHCP server by API URL
func (r *dhcpServerRepositoryImpl) FindByAPIURL(ctx context.Context, apiURL string) (domain.DHCPServer, error) {
	return r.findOne(ctx, "API URL", "api_url", apiURL)
}

// FindAll finds all DHCP servers ordered by name
func (r *dhcpServerRepositoryImpl) FindAll(ctx context.Context) ([]domain.DHCPServer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+dhcpServerColumns+` FROM dhcp_servers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to find DHCP servers: %w", err)
	}
	defer rows.Close()

	var servers []domain.DHCPServer
	for rows.Next() {
		s, err := scanDHCPServer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DHCP server: %w", err)
		}
		servers = append(servers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating DHCP servers: %w", err)
	}

	return servers, nil
}

// DeleteByID deletes a DHCP server; its reservations go with it
func (r *dhcpServerRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM dhcp_servers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete DHCP server: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("DHCP server with ID %d: %w", id, err)
	}
	return nil
}

// ExistsByID checks if a DHCP server exists by ID
func (r *dhcpServerRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dhcp_servers WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check DHCP server existence: %w", err)
	}
	return count > 0, nil
}
