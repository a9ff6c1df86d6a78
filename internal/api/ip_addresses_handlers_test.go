package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIPAddress(t *testing.T) {
	h := setupTestAPI(t)

	w := doRequest(t, h, http.MethodPost, "/api/v0/ip-addresses", CreateIPAddressRequest{Address: "10.0.0.1/24", DNSName: "gw.example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[IPAddressResponse](t, w)
	assert.Equal(t, "10.0.0.1/24", resp.Address)
	assert.Equal(t, "gw.example.com", resp.DNSName)

	w = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v0/ip-addresses/%d", resp.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resp, decodeBody[IPAddressResponse](t, w))

	w = doRequest(t, h, http.MethodGet, "/api/v0/ip-addresses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]IPAddressResponse](t, w), 1)
}

func TestCreateIPAddress_Invalid(t *testing.T) {
	h := setupTestAPI(t)

	w := doRequest(t, h, http.MethodPost, "/api/v0/ip-addresses", CreateIPAddressRequest{Address: "10.0.0.1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, w).Fields, "address")
}

func TestCreateIPAddress_Duplicate(t *testing.T) {
	h := setupTestAPI(t)

	createIP(t, h, "10.0.0.1/24")
	w := doRequest(t, h, http.MethodPost, "/api/v0/ip-addresses", CreateIPAddressRequest{Address: "10.0.0.1/24"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteIPAddress_CascadesToReservations(t *testing.T) {
	h := setupTestAPI(t)

	ip := createIP(t, h, "192.168.1.12/24")
	srv := createServer(t, h, "Test Server", "https://testserver.com/api")
	res := createReservation(t, h, ip.ID, srv.ID, "cc:cc:cc:cc:cc:cc")

	w := doRequest(t, h, http.MethodDelete, fmt.Sprintf("/api/v0/ip-addresses/%d", ip.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v0/dhcp-reservations/%d", res.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/v0/ip-addresses/%d", ip.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateIPAddress_DuplicateDifferentSpelling(t *testing.T) {
	h := setupTestAPI(t)

	ip := createIP(t, h, "2001:DB8::1/64")
	assert.Equal(t, "2001:db8::1/64", ip.Address)

	w := doRequest(t, h, http.MethodPost, "/api/v0/ip-addresses", CreateIPAddressRequest{Address: "2001:db8:0::1/64"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
