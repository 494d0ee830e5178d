package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantgate"
)

// Server wires the domain management endpoints onto a chi router.
type Server struct {
	verifier *tenantgate.Verifier
	log      *slog.Logger
	health   []func(ctx context.Context) error
	timeout  time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHealthcheck registers a dependency probe for the healthz endpoint.
func WithHealthcheck(fn func(ctx context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.health = append(s.health, fn)
		}
	}
}

// WithRequestTimeout bounds handler execution. Defaults to 15s, which
// leaves headroom for the DNS lookup inside a verification attempt.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer builds the HTTP surface around the verification engine.
func NewServer(verifier *tenantgate.Verifier, opts ...Option) *Server {
	s := &Server{
		verifier: verifier,
		log:      slog.Default(),
		timeout:  15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the route table with the standard middleware chain.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/tls/allowed", s.handleTLSAllowed)

	r.Route("/tenants/{tenantID}/domain", func(r chi.Router) {
		r.Post("/", s.handleClaimDomain)
		r.Delete("/", s.handleReleaseDomain)
		r.Get("/", s.handleDomainStatus)
		r.Post("/verify", s.handleVerifyDomain)
	})

	return r
}

type claimDomainRequest struct {
	Domain string `json:"domain"`
}

type domainStatusResponse struct {
	TenantID         uuid.UUID                       `json:"tenant_id"`
	Domain           string                          `json:"domain,omitempty"`
	Status           tenantgate.VerificationStatus   `json:"domain_verification_status"`
	SSLStatus        tenantgate.SSLStatus            `json:"ssl_status"`
	DomainVerifiedAt *time.Time                      `json:"domain_verified_at,omitempty"`
	History          []tenantgate.VerificationRecord `json:"history,omitempty"`
}

type tlsAllowedResponse struct {
	Domain  string `json:"domain"`
	Allowed bool   `json:"allowed"`
}

func (s *Server) handleClaimDomain(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	var req claimDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.verifier.ClaimDomain(r.Context(), tenantID, req.Domain); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReleaseDomain(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	if err := s.verifier.ReleaseDomain(r.Context(), tenantID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDomainStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("history"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "history must be a non-negative integer")
			return
		}
		limit = n
	}

	t, history, err := s.verifier.Status(r.Context(), tenantID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainStatusResponse{
		TenantID:         t.ID,
		Domain:           t.CustomDomain,
		Status:           t.DomainStatus,
		SSLStatus:        t.SSLStatus,
		DomainVerifiedAt: t.DomainVerifiedAt,
		History:          history,
	})
}

func (s *Server) handleVerifyDomain(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDParam(w, r)
	if !ok {
		return
	}

	result, err := s.verifier.Verify(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleTLSAllowed gates on-demand certificate issuance: 200 approves the
// handshake hostname, 403 denies it. The issuer treats any non-200 as a
// refusal, so failures here fail closed.
func (s *Server) handleTLSAllowed(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain query parameter is required")
		return
	}

	allowed := s.verifier.IsDomainAllowed(r.Context(), domain)
	status := http.StatusOK
	if !allowed {
		status = http.StatusForbidden
	}
	writeJSON(w, status, tlsAllowedResponse{Domain: domain, Allowed: allowed})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for _, probe := range s.health {
		if err := probe(r.Context()); err != nil {
			s.log.ErrorContext(r.Context(), "healthcheck failed", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func tenantIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return uuid.Nil, false
	}
	return id, true
}
