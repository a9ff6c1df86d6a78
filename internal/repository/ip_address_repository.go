package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
)

// IPAddressRepository defines domain-specific operations for IP address records
type IPAddressRepository interface {
	Repository[domain.IPAddress, int64]
	FindByAddress(ctx context.Context, address string) (domain.IPAddress, error)
}

// ipAddressRepositoryImpl implements IPAddressRepository
type ipAddressRepositoryImpl struct {
	db DBTX
}

// NewIPAddressRepository creates a new IP address repository
func NewIPAddressRepository(db DBTX) IPAddressRepository {
	return &ipAddressRepositoryImpl{
		db: db,
	}
}

const ipAddressColumns = `id, address, dns_name`

func scanIPAddress(row rowScanner) (domain.IPAddress, error) {
	var a domain.IPAddress
	err := row.Scan(&a.ID, &a.Address, &a.DNSName)
	return a, err
}

// Save creates or updates an IP address record. The address is stored in
// canonical form so differently written duplicates collide.
func (r *ipAddressRepositoryImpl) Save(ctx context.Context, a domain.IPAddress) (domain.IPAddress, error) {
	a.Address = domain.NormalizeAddress(a.Address)
	if a.Address == "" {
		return domain.IPAddress{}, fmt.Errorf("IP address is required: %w", ErrInvalidEntity)
	}

	if a.ID == 0 {
		result, err := r.db.ExecContext(ctx,
			`INSERT INTO ip_addresses (address, dns_name) VALUES (?, ?)`,
			a.Address, a.DNSName)
		if err != nil {
			return domain.IPAddress{}, fmt.Errorf("failed to create IP address: %w", translateError(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return domain.IPAddress{}, fmt.Errorf("failed to get IP address ID: %w", err)
		}
		a.ID = id
		return a, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE ip_addresses
		SET address = ?, dns_name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		a.Address, a.DNSName, a.ID)
	if err != nil {
		return domain.IPAddress{}, fmt.Errorf("failed to update IP address: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return domain.IPAddress{}, fmt.Errorf("IP address with ID %d: %w", a.ID, err)
	}
	return a, nil
}

// FindByID finds an IP address by ID
func (r *ipAddressRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.IPAddress, error) {
	a, err := scanIPAddress(r.db.QueryRowContext(ctx,
		`SELECT `+ipAddressColumns+` FROM ip_addresses WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IPAddress{}, fmt.Errorf("IP address with ID %d: %w", id, ErrNotFound)
		}
		return domain.IPAddress{}, fmt.Errorf("failed to find IP address: %w", err)
	}
	return a, nil
}

// FindByAddress finds an IP address by its address string, in any spelling
func (r *ipAddressRepositoryImpl) FindByAddress(ctx context.Context, address string) (domain.IPAddress, error) {
	address = domain.NormalizeAddress(address)
	a, err := scanIPAddress(r.db.QueryRowContext(ctx,
		`SELECT `+ipAddressColumns+` FROM ip_addresses WHERE address = ?`, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IPAddress{}, fmt.Errorf("IP address %s: %w", address, ErrNotFound)
		}
		return domain.IPAddress{}, fmt.Errorf("failed to find IP address: %w", err)
	}
	return a, nil
}

// FindAll finds all IP addresses
func (r *ipAddressRepositoryImpl) FindAll(ctx context.Context) ([]domain.IPAddress, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ipAddressColumns+` FROM ip_addresses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to find IP addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.IPAddress
	for rows.Next() {
		a, err := scanIPAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan IP address: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating IP addresses: %w", err)
	}

	return addresses, nil
}

// DeleteByID deletes an IP address; its reservations go with it
func (r *ipAddressRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM ip_addresses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete IP address: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("IP address with ID %d: %w", id, err)
	}
	return nil
}

// ExistsByID checks if an IP address exists by ID
func (r *ipAddressRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ip_addresses WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check IP address existence: %w", err)
	}
	return count > 0, nil
}
