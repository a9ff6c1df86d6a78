package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jbweber/homelab/nbdhcp/internal/datastore"
	"github.com/jbweber/homelab/nbdhcp/internal/repository"
)

// API holds repository dependencies for the HTTP handlers
type API struct {
	ds           *datastore.Datastore
	ipRepo       repository.IPAddressRepository
	serverRepo   repository.DHCPServerRepository
	reservations repository.DHCPReservationRepository
	logger       *zap.Logger
}

// NewAPI creates a new API instance with repositories initialized from the datastore
func NewAPI(ds *datastore.Datastore, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		ds:           ds,
		ipRepo:       repository.NewIPAddressRepository(ds.DB),
		serverRepo:   repository.NewDHCPServerRepository(ds.DB),
		reservations: repository.NewDHCPReservationRepository(ds.DB),
		logger:       logger,
	}
}

// Close releases statements held by the repositories. The datastore stays open.
func (a *API) Close() error {
	return a.reservations.Close()
}

// Handler returns a chi router with the standard middleware stack and all routes
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(a.logger))
	r.Use(middleware.Recoverer)
	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.healthHandler)

	ips := NewIPAddresses(a.ipRepo, a.logger)
	r.Route("/api/v0/ip-addresses", func(r chi.Router) {
		r.Get("/", ips.ListHandler)
		r.Post("/", ips.CreateHandler)
		r.Get("/{id}", ips.GetHandler)
		r.Delete("/{id}", ips.DeleteHandler)
	})

	servers := NewDHCPServers(a.serverRepo, a.reservations, a.logger)
	r.Route("/api/v0/dhcp-servers", func(r chi.Router) {
		r.Get("/", servers.ListHandler)
		r.Post("/", servers.CreateHandler)
		r.Get("/{id}", servers.GetHandler)
		r.Patch("/{id}", servers.UpdateHandler)
		r.Delete("/{id}", servers.DeleteHandler)
		r.Get("/{id}/reservations", servers.ReservationsHandler)
	})

	reservations := NewDHCPReservations(a.reservations, a.logger)
	r.Route("/api/v0/dhcp-reservations", func(r chi.Router) {
		r.Get("/", reservations.ListHandler)
		r.Post("/", reservations.CreateHandler)
		r.Get("/{id}", reservations.GetHandler)
		r.Delete("/{id}", reservations.DeleteHandler)
		r.Patch("/{id}/status", reservations.UpdateStatusHandler)
	})
}

// healthHandler reports whether the database answers
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.ds.DB.PingContext(r.Context()); err != nil {
		a.logger.Error("health check failed", zap.Error(err))
		writeError(w, a.logger, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, a.logger, http.StatusOK, map[string]string{"status": "ok"})
}
