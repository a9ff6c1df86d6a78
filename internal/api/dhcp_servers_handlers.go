package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

// DHCPServers groups DHCP server handlers for testability
type DHCPServers struct {
	repo         repository.DHCPServerRepository
	reservations repository.DHCPReservationRepository
	logger       *zap.Logger
}

func NewDHCPServers(repo repository.DHCPServerRepository, reservations repository.DHCPReservationRepository, logger *zap.Logger) *DHCPServers {
	return &DHCPServers{repo: repo, reservations: reservations, logger: logger}
}

// CreateDHCPServerRequest is the POST body. An omitted ssl_verify means true.
type CreateDHCPServerRequest struct {
	Name      string `json:"name"`
	APIToken  string `json:"api_token"`
	APIURL    string `json:"api_url"`
	SSLVerify *bool  `json:"ssl_verify,omitempty"`
}

// UpdateDHCPServerRequest is the PATCH body; nil fields are left unchanged
type UpdateDHCPServerRequest struct {
	Name      *string `json:"name,omitempty"`
	APIToken  *string `json:"api_token,omitempty"`
	APIURL    *string `json:"api_url,omitempty"`
	SSLVerify *bool   `json:"ssl_verify,omitempty"`
}

// DHCPServerResponse never carries the API token
type DHCPServerResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	APIURL    string `json:"api_url"`
	SSLVerify bool   `json:"ssl_verify"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toDHCPServerResponse(s domain.DHCPServer) DHCPServerResponse {
	return DHCPServerResponse{
		ID:        s.ID,
		Name:      s.Name,
		APIURL:    s.APIURL,
		SSLVerify: s.SSLVerify,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (h *DHCPServers) ListHandler(w http.ResponseWriter, r *http.Request) {
	servers, err := h.repo.FindAll(r.Context())
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	response := make([]DHCPServerResponse, len(servers))
	for i, s := range servers {
		response[i] = toDHCPServerResponse(s)
	}
	writeJSON(w, h.logger, http.StatusOK, response)
}

func (h *DHCPServers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateDHCPServerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s := domain.NewDHCPServer(req.Name, req.APIToken, req.APIURL, req.SSLVerify)
	if err := s.Validate(); err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	created, err := h.repo.Save(r.Context(), s)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	h.logger.Info("created DHCP server", zap.Int64("id", created.ID), zap.String("name", created.Name))
	writeJSON(w, h.logger, http.StatusCreated, toDHCPServerResponse(created))
}

func (h *DHCPServers) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP server ID")
		return
	}

	s, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDHCPServerResponse(s))
}

// UpdateHandler handles PATCH /api/v0/dhcp-servers/{id}.
//
// Only the fields present in the body change. The result is validated as a
// whole and name or api_url collisions give 409.
func (h *DHCPServers) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP server ID")
		return
	}

	var req UpdateDHCPServerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.APIToken != nil {
		s.APIToken = *req.APIToken
	}
	if req.APIURL != nil {
		s.APIURL = *req.APIURL
	}
	if req.SSLVerify != nil {
		s.SSLVerify = *req.SSLVerify
	}

	if err := s.Validate(); err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	updated, err := h.repo.Save(r.Context(), s)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDHCPServerResponse(updated))
}

// DeleteHandler removes the server and, through the foreign key, its reservations
func (h *DHCPServers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP server ID")
		return
	}

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}

	h.logger.Info("deleted DHCP server", zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ReservationsHandler lists the reservations held by one server
func (h *DHCPServers) ReservationsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid DHCP server ID")
		return
	}

	exists, err := h.repo.ExistsByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP server")
		return
	}
	if !exists {
		writeError(w, h.logger, http.StatusNotFound, "DHCP server not found")
		return
	}

	reservations, err := h.reservations.FindByDHCPServerID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "DHCP reservation")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDHCPReservationResponses(reservations))
}
