package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

// DHCPReservations groups DHCP reservation handlers for testability
type DHCPReservations struct {
	repo   repository.DHCPReservationRepository
	logger *zap.Logger
}

func NewDHCPReservations(repo repository.DHCPReservationRepository, logger *zap.Logger) *DHCPReservations {
	return &DHCPReservations{repo: repo, logger: logger}
}

type CreateDHCPReservationRequest struct {
	IPAddressID  int64  `json:"ip_address_id"`
	MACAddress   string `json:"mac_address"`
	DHCPServerID int64  `json:"dhcp_server_id"`
	Status       string `json:"status,omitempty"`
	Description  string `json:"description,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type DHCPReservationResponse struct {
	ID           int64  `json:"id"`
	IPAddressID  int64  `json:"ip_address_id"`
	MACAddress   string `json:"mac_address"`
	Status       string `json:"status"`
	DHCPServerID int64  `json:"dhcp_server_id"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toDHCPReservationResponse(d domain.DHCPReservation) DHCPReservationResponse {
	return DHCPReservationResponse{
		ID:           d.ID,
		IPAddressID:  d.IPAddressID,
		MACAddress:   d.MACAddress,
		Status:       string(d.Status),
		DHCPServerID: d.DHCPServerID,
		Description:  d.Description,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDHCPReservationResponses(reservations []domain.DHCPReservation) []DHCPReservationResponse {
	response := make([]DHCPReservationResponse, len(reservations))
	for i, d := range reservations {
		response[i] = toDHCPReservationResponse(d)
	}
	return response
}

// ListHandler handles GET /api/v0/dhcp-reservations.
//
// ?mac_address= returns at most one reservation; ?status= filters by state.
func (h *DHCPReservations) ListHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if mac := query.Get("mac_address"); mac != "" {
		d, err := h.repo.FindByMACAddress(r.Context(), mac)
		if err != nil {
			writeStoreError(w, h.logger, err, "DHCP reservation")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, []DHCPReservationResponse{toDHCPReservationResponse(d)})
		return
	}

	var reservations []domain.DHCPReservation
	var err error
	if status := query.Get("status"); status != "" {
		if !domain.ReservationStatus(status).Valid() {
			writeFieldError(w, h.logger, "status", "unknown status "+status)
			return
		}
		reservations, err = h.repo.FindByStatus(r.Context(), domain.ReservationStatus(status))
	} else {
		reservations, err = h.repo.FindAll(r.Context())
	}
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDHCPReservationResponses(reservations))
}

// CreateHandler validates the reservation fully before saving it, so a bad
// MAC address is a 400 with field detail rather than a database error.
func (h *DHCPReservations) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateDHCPReservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	d := domain.DHCPReservation{
		IPAddressID:  req.IPAddressID,
		MACAddress:   req.MACAddress,
		Status:       domain.ReservationStatus(req.Status),
		DHCPServerID: req.DHCPServerID,
		Description:  req.Description,
	}
	if err := d.Validate(); err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}

	created, err := h.repo.Save(r.Context(), d)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}

	h.logger.Info("created DHCP reservation",
		zap.Int64("id", created.ID),
		zap.String("mac_address", created.MACAddress),
		zap.Int64("dhcp_server_id", created.DHCPServerID))
	writeJSON(w, h.logger, http.StatusCreated, toDHCPReservationResponse(created))
}

func (h *DHCPReservations) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP reservation ID")
		return
	}

	d, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDHCPReservationResponse(d))
}

func (h *DHCPReservations) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP reservation ID")
		return
	}

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}

	h.logger.Info("deleted DHCP reservation", zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *DHCPReservations) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP reservation ID")
		return
	}

	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	status := domain.ReservationStatus(req.Status)
	if !status.Valid() {
		writeFieldError(w, h.logger, "status", "unknown status "+req.Status)
		return
	}

	updated, err := h.repo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}

	h.logger.Info("updated DHCP reservation status", zap.Int64("id", id), zap.String("status", req.Status))
	writeJSON(w, h.logger, http.StatusOK, toDHCPReservationResponse(updated))
}
