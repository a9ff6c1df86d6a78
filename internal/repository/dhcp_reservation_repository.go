package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
)

// DHCPReservationRepository defines domain-specific operations for DHCP reservations
type DHCPReservationRepository interface {
	Repository[domain.DHCPReservation, int64]
	FindByMACAddress(ctx context.Context, mac string) (domain.DHCPReservation, error)
	FindByDHCPServerID(ctx context.Context, serverID int64) ([]domain.DHCPReservation, error)
	FindByIPAddressID(ctx context.Context, ipAddressID int64) ([]domain.DHCPReservation, error)
	FindByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.DHCPReservation, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.DHCPReservation, error)
	Close() error
}

// dhcpReservationRepositoryImpl implements DHCPReservationRepository
type dhcpReservationRepositoryImpl struct {
	db    DBTX
	stmts *PreparedStatementCache // nil unless db is a *sql.DB
}

// NewDHCPReservationRepository creates a new DHCP reservation repository.
// Given a *sql.DB the ID and MAC lookups use cached prepared statements; given
// a *sql.Tx every query runs directly on the transaction.
func NewDHCPReservationRepository(db DBTX) DHCPReservationRepository {
	r := &dhcpReservationRepositoryImpl{db: db}
	if sqlDB, ok := db.(*sql.DB); ok {
		r.stmts = NewPreparedStatementCache(sqlDB)
	}
	return r
}

const (
	dhcpReservationColumns = `id, ip_address_id, mac_address, status, dhcp_server_id, description, created_at, updated_at`

	findReservationByIDQuery  = `SELECT ` + dhcpReservationColumns + ` FROM dhcp_reservations WHERE id = ?`
	findReservationByMACQuery = `SELECT ` + dhcpReservationColumns + ` FROM dhcp_reservations WHERE mac_address = ?`
)

func scanDHCPReservation(row rowScanner) (domain.DHCPReservation, error) {
	var d domain.DHCPReservation
	var status string
	err := row.Scan(&d.ID, &d.IPAddressID, &d.MACAddress, &status, &d.DHCPServerID,
		&d.Description, &d.CreatedAt, &d.UpdatedAt)
	d.Status = domain.ReservationStatus(status)
	return d, err
}

// Save creates or updates a reservation. It applies the default status and
// lower-cases the MAC address, but does not run Validate: format problems are
// the caller's to check, constraint violations come back as IntegrityError.
func (r *dhcpReservationRepositoryImpl) Save(ctx context.Context, d domain.DHCPReservation) (domain.DHCPReservation, error) {
	if d.IPAddressID == 0 {
		return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation IP address is required: %w", ErrInvalidEntity)
	}
	if d.DHCPServerID == 0 {
		return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation DHCP server is required: %w", ErrInvalidEntity)
	}
	if d.MACAddress == "" {
		return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation MAC address is required: %w", ErrInvalidEntity)
	}

	d.MACAddress = domain.NormalizeMACAddress(d.MACAddress)
	if d.Status == "" {
		d.Status = domain.DefaultReservationStatus
	}

	if d.ID == 0 {
		return r.createReservation(ctx, d)
	}
	return r.updateReservation(ctx, d)
}

// createReservation inserts a new reservation into the database
func (r *dhcpReservationRepositoryImpl) createReservation(ctx context.Context, d domain.DHCPReservation) (domain.DHCPReservation, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO dhcp_reservations (ip_address_id, mac_address, status, dhcp_server_id, description)
		VALUES (?, ?, ?, ?, ?)`,
		d.IPAddressID, d.MACAddress, string(d.Status), d.DHCPServerID, d.Description)
	if err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("failed to create DHCP reservation: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("failed to get DHCP reservation ID: %w", err)
	}

	return r.FindByID(ctx, id)
}

// updateReservation updates an existing reservation in the database
func (r *dhcpReservationRepositoryImpl) updateReservation(ctx context.Context, d domain.DHCPReservation) (domain.DHCPReservation, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE dhcp_reservations
		SET ip_address_id = ?, mac_address = ?, status = ?, dhcp_server_id = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		d.IPAddressID, d.MACAddress, string(d.Status), d.DHCPServerID, d.Description, d.ID)
	if err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("failed to update DHCP reservation: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation with ID %d: %w", d.ID, err)
	}

	return r.FindByID(ctx, d.ID)
}

// UpdateStatus moves a reservation to another lifecycle state
func (r *dhcpReservationRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.DHCPReservation, error) {
	if !status.Valid() {
		return domain.DHCPReservation{}, fmt.Errorf("unknown DHCP reservation status %q: %w", status, ErrInvalidEntity)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE dhcp_reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), id)
	if err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("failed to update DHCP reservation status: %w", translateError(err))
	}
	if err := requireAffected(result); err != nil {
		return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation with ID %d: %w", id, err)
	}

	return r.FindByID(ctx, id)
}

func (r *dhcpReservationRepositoryImpl) findOne(ctx context.Context, query, what string, arg any) (domain.DHCPReservation, error) {
	var row *sql.Row
	if r.stmts != nil {
		stmt, err := r.stmts.Get(ctx, query)
		if err != nil {
			return domain.DHCPReservation{}, fmt.Errorf("failed to prepare statement: %w", err)
		}
		row = stmt.QueryRowContext(ctx, arg)
	} else {
		row = r.db.QueryRowContext(ctx, query, arg)
	}

	d, err := scanDHCPReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DHCPReservation{}, fmt.Errorf("DHCP reservation with %s %v: %w", what, arg, ErrNotFound)
		}
		return domain.DHCPReservation{}, fmt.Errorf("failed to find DHCP reservation: %w", err)
	}
	return d, nil
}

// FindByID finds a reservation by ID
func (r *dhcpReservationRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.DHCPReservation, error) {
	return r.findOne(ctx, findReservationByIDQuery, "ID", id)
}

// FindByMACAddress finds a reservation by MAC address, ignoring case
func (r *dhcpReservationRepositoryImpl) FindByMACAddress(ctx context.Context, mac string) (domain.DHCPReservation, error) {
	return r.findOne(ctx, findReservationByMACQuery, "MAC address", domain.NormalizeMACAddress(mac))
}

func (r *dhcpReservationRepositoryImpl) findMany(ctx context.Context, where string, args ...any) ([]domain.DHCPReservation, error) {
	query := `SELECT ` + dhcpReservationColumns + ` FROM dhcp_reservations`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find DHCP reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.DHCPReservation
	for rows.Next() {
		d, err := scanDHCPReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DHCP reservation: %w", err)
		}
		reservations = append(reservations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating DHCP reservations: %w", err)
	}

	return reservations, nil
}

// FindAll finds all reservations
func (r *dhcpReservationRepositoryImpl) FindAll(ctx context.Context) ([]domain.DHCPReservation, error) {
	return r.findMany(ctx, "")
}

// FindByDHCPServerID finds all reservations held by a DHCP server
func (r *dhcpReservationRepositoryImpl) FindByDHCPServerID(ctx context.Context, serverID int64) ([]domain.DHCPReservation, error) {
	return r.findMany(ctx, "dhcp_server_id = ?", serverID)
}

// FindByIPAddressID finds all reservations for an IP address record
func (r *dhcpReservationRepositoryImpl) FindByIPAddressID(ctx context.Context, ipAddressID int64) ([]domain.DHCPReservation, error) {
	return r.findMany(ctx, "ip_address_id = ?", ipAddressID)
}

// FindByStatus finds all reservations in the given state
func (r *dhcpReservationRepositoryImpl) FindByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.DHCPReservation, error) {
	return r.findMany(ctx, "status = ?", string(status))
}

// DeleteByID deletes a reservation by ID
func (r *dhcpReservationRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM dhcp_reservations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete DHCP reservation: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return fmt.Errorf("DHCP reservation with ID %d: %w", id, err)
	}
	return nil
}

// ExistsByID checks if a reservation exists by ID
func (r *dhcpReservationRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM dhcp_reservations WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check DHCP reservation existence: %w", err)
	}
	return count > 0, nil
}

// Close releases the cached prepared statements
func (r *dhcpReservationRepositoryImpl) Close() error {
	if r.stmts == nil {
		return nil
	}
	return r.stmts.Close()
}
