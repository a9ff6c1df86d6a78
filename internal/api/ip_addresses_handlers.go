package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/domain"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

// IPAddresses groups IP address handlers for testability
type IPAddresses struct {
	repo   repository.IPAddressRepository
	logger *zap.Logger
}

func NewIPAddresses(repo repository.IPAddressRepository, logger *zap.Logger) *IPAddresses {
	return &IPAddresses{repo: repo, logger: logger}
}

type CreateIPAddressRequest struct {
	Address string `json:"address"`
	DNSName string `json:"dns_name"`
}

type IPAddressResponse struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	DNSName string `json:"dns_name"`
}

func toIPAddressResponse(a domain.IPAddress) IPAddressResponse {
	return IPAddressResponse{ID: a.ID, Address: a.Address, DNSName: a.DNSName}
}

func (h *IPAddresses) ListHandler(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.repo.FindAll(r.Context())
	if err != nil {
		writeStoreError(w, h.logger, err, "IP address")
		return
	}

	response := make([]IPAddressResponse, len(addresses))
	for i, a := range addresses {
		response[i] = toIPAddressResponse(a)
	}
	writeJSON(w, h.logger, http.StatusOK, response)
}

func (h *IPAddresses) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateIPAddressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON")
		return
	}

	a := domain.IPAddress{Address: req.Address, DNSName: req.DNSName}
	if err := a.Validate(); err != nil {
		writeStoreError(w, h.logger, err, "IP address")
		return
	}

	created, err := h.repo.Save(r.Context(), a)
	if err != nil {
		writeStoreError(w, h.logger, err, "IP address")
		return
	}

	h.logger.Info("created IP address", zap.Int64("id", created.ID), zap.String("address", created.Address))
	writeJSON(w, h.logger, http.StatusCreated, toIPAddressResponse(created))
}

func (h *IPAddresses) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid IP address ID")
		return
	}

	a, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, h.logger, err, "IP address")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toIPAddressResponse(a))
}

// DeleteHandler removes the address and, through the foreign key, its reservations
func (h *IPAddresses) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid IP address ID")
		return
	}

	if err := h.repo.DeleteByID(r.Context(), id); err != nil {
		writeStoreError(w, h.logger, err, "IP address")
		return
	}

	h.logger.Info("deleted IP address", zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
