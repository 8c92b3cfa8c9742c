package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appLoad "github.com/freightboard/freightboard/internal/application/load"
	appNegotiation "github.com/freightboard/freightboard/internal/application/negotiation"
	appOtp "github.com/freightboard/freightboard/internal/application/otp"
	appPricing "github.com/freightboard/freightboard/internal/application/pricing"
	"github.com/freightboard/freightboard/internal/domain/bid"
	"github.com/freightboard/freightboard/internal/domain/load"
	"github.com/freightboard/freightboard/internal/domain/negotiation"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/otp"
	"github.com/freightboard/freightboard/internal/domain/screening"
	"github.com/freightboard/freightboard/internal/domain/telemetry"
	"github.com/freightboard/freightboard/internal/domain/user"
	"github.com/freightboard/freightboard/internal/infrastructure/sse"
)

// Authenticator resolves a bearer api key to the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*user.User, error)
}

// UserDirectory is the slice of user management the API exposes.
type UserDirectory interface {
	Register(ctx context.Context, name string, role user.Role) (*user.User, error)
	Get(ctx context.Context, userID uuid.UUID) (*user.User, error)
	List(ctx context.Context, filter user.Filter, limit, offset int) ([]*user.User, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	loadSvc        *appLoad.Service
	pricingSvc     *appPricing.Service
	negotiationSvc *appNegotiation.Service
	otpSvc         *appOtp.Service
	auth           Authenticator
	users          UserDirectory
	ruleRepo       screening.Repository
	tracker        telemetry.Tracker
	sseHub         *sse.Hub
	logger         zerolog.Logger
}

// NewServer wires the handler set. tracker may be nil when telemetry is
// not configured; the tracking route then answers 503.
func NewServer(
	loadSvc *appLoad.Service,
	pricingSvc *appPricing.Service,
	negotiationSvc *appNegotiation.Service,
	otpSvc *appOtp.Service,
	auth Authenticator,
	users UserDirectory,
	ruleRepo screening.Repository,
	tracker telemetry.Tracker,
	sseHub *sse.Hub,
	logger zerolog.Logger,
) *Server {
	return &Server{
		loadSvc:        loadSvc,
		pricingSvc:     pricingSvc,
		negotiationSvc: negotiationSvc,
		otpSvc:         otpSvc,
		auth:           auth,
		users:          users,
		ruleRepo:       ruleRepo,
		tracker:        tracker,
		sseHub:         sseHub,
		logger:         logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/loads", func(r chi.Router) {
				r.With(s.requireRole(user.RoleShipper)).Post("/", s.createLoad)
				r.Get("/", s.listLoads)

				r.Route("/{loadId}", func(r chi.Router) {
					r.Get("/", s.getLoad)
					r.Get("/history", s.loadHistory)
					r.Get("/tracking", s.loadTracking)
					r.Get("/thread", s.getThread)
					r.With(s.requireRole(user.RoleShipper, user.RoleAdmin)).Post("/submit", s.submitLoad)
					r.With(s.requireRole(user.RoleShipper, user.RoleAdmin)).Post("/cancel", s.cancelLoad)
					r.With(s.requireRole(user.RoleAdmin)).Post("/transition", s.transitionLoad)
					r.With(s.requireRole(user.RoleAdmin)).Post("/post", s.postLoad)
					r.With(s.requireRole(user.RoleAdmin)).Post("/assign", s.assignLoad)
					r.With(s.requireRole(user.RoleCarrier, user.RoleAdmin)).Post("/bids", s.placeBid)
					r.With(s.requireRole(user.RoleAdmin)).Post("/bids/{bidId}/counter", s.counterBid)
					r.With(s.requireRole(user.RoleShipper, user.RoleAdmin)).Patch("/bids/{bidId}/accept", s.acceptBid)
				})
			})

			r.With(s.requireRole(user.RoleAdmin)).Post("/pricing/estimate", s.estimatePrice)

			r.Route("/otp", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.With(s.requireRole(user.RoleCarrier)).Post("/", s.createOtpRequest)
					r.With(s.requireRole(user.RoleAdmin)).Get("/", s.listOtpRequests)
					r.With(s.requireRole(user.RoleAdmin)).Post("/{requestId}/approve", s.approveOtpRequest)
					r.With(s.requireRole(user.RoleAdmin)).Post("/{requestId}/reject", s.rejectOtpRequest)
					r.With(s.requireRole(user.RoleAdmin)).Post("/{requestId}/regenerate", s.regenerateOtpRequest)
				})
				r.With(s.requireRole(user.RoleCarrier, user.RoleAdmin)).Post("/verify", s.verifyOtp)
			})

			r.Route("/screening-rules", func(r chi.Router) {
				r.Use(s.requireRole(user.RoleAdmin))
				r.Get("/", s.listScreeningRules)
				r.Post("/", s.createScreeningRule)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireRole(user.RoleAdmin))
				r.Post("/", s.createUser)
				r.Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
			})

			r.Get("/events", s.sseEndpoint)
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// respondServiceError maps domain error families onto wire codes. Only
// CONCURRENT_MODIFICATION invites a retry.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, load.ErrNotFound),
		errors.Is(err, bid.ErrNotFound),
		errors.Is(err, negotiation.ErrThreadNotFound),
		errors.Is(err, otp.ErrRequestNotFound),
		errors.Is(err, otp.ErrVerificationNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, screening.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, load.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, load.ErrVersionConflict):
		respondError(w, http.StatusConflict, "CONCURRENT_MODIFICATION", err.Error())
	case errors.Is(err, otp.ErrAlreadyUsed):
		respondError(w, http.StatusConflict, "ALREADY_USED", err.Error())
	case errors.Is(err, otp.ErrCodeExpired):
		respondError(w, http.StatusGone, "EXPIRED", err.Error())
	case errors.Is(err, otp.ErrAttemptsExceeded):
		respondError(w, http.StatusTooManyRequests, "ATTEMPTS_EXCEEDED", err.Error())
	case errors.Is(err, otp.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, "INVALID_CODE", err.Error())
	case errors.Is(err, otp.ErrDuplicateRequest),
		errors.Is(err, otp.ErrRequestNotPending),
		errors.Is(err, otp.ErrRequestNotApproved),
		errors.Is(err, bid.ErrNotOpen),
		errors.Is(err, negotiation.ErrThreadClosed),
		errors.Is(err, appNegotiation.ErrApprovalRequired):
		respondError(w, http.StatusConflict, "PRECONDITION_FAILED", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, key))
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "client_id required")
		return
	}
	u := authUserFromContext(r.Context())
	userID := u.UserID.String()
	client := notification.NewSSEClient(clientID, &userID)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}
	w.WriteHeader(http.StatusOK)
	// Send an initial comment to flush headers and keep the connection alive.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg := <-client.MessageChan:
			if msg == nil {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
