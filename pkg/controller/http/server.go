package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/qoit/pkg/usecase"
	"github.com/secmon-lab/qoit/pkg/utils/async"
	"github.com/secmon-lab/qoit/pkg/utils/errutil"
	"github.com/secmon-lab/qoit/pkg/utils/logging"
	"github.com/secmon-lab/qoit/pkg/utils/safe"
)

const maxBodyBytes = 64 << 10

type Server struct {
	router     *chi.Mux
	uc         *usecase.UseCases
	authUC     AuthUseCase
	headers    AuthHeaders
	background *async.Group
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithAuthHeaders sets the request headers carrying the identity asserted by
// the authenticating proxy
func WithAuthHeaders(headers AuthHeaders) Options {
	return func(s *Server) {
		s.headers = headers
	}
}

// WithBackground sets the group tracking work that outlives a request
func WithBackground(g *async.Group) Options {
	return func(s *Server) {
		s.background = g
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:     r,
		uc:         uc,
		authUC:     uc.Auth,
		headers:    DefaultAuthHeaders,
		background: &async.Group{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = usecase.NewHeaderAuthnUseCase()
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public status pages
		r.Route("/profiles/{username}", func(r chi.Router) {
			r.Get("/", s.getPublicProfile)
			r.Post("/messages", s.sendMessage)
		})

		// Owner endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC, s.headers))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.getMe)
				r.Post("/", s.register)
				r.Patch("/profile", s.updateProfileInfo)
				r.Delete("/session", s.releaseSession)

				r.Put("/status", s.putStatus)
				r.Patch("/details", s.patchDetails)

				r.Route("/back-at", func(r chi.Router) {
					r.Get("/", s.getPicker)
					r.Post("/preset", s.postPreset)
					r.Post("/tap", s.postTap)
					r.Delete("/", s.clearBackAt)
				})
			})

			r.Route("/integrations", func(r chi.Router) {
				r.Get("/", s.listIntegrations)
				r.Post("/sync", s.syncIntegrations)
				r.Put("/{type}", s.connectIntegration)
				r.Delete("/{type}", s.disconnectIntegration)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", s.listMessages)
				r.Post("/{id}/read", s.markMessageRead)
				r.Delete("/{id}", s.deleteMessage)
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until background work started by requests has finished,
// including return times committed from the picker
func (s *Server) Wait(ctx context.Context) error {
	if err := s.background.Wait(ctx); err != nil {
		return err
	}
	return s.uc.Dashboard.Wait(ctx)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// decodeJSON reads the request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer safe.Close(r.Context(), body)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrInvalidInput, "malformed request body", goerr.V("cause", err.Error()))
	}
	return nil
}

// handleError writes err with the status code matching its sentinel
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusCodeOf(err))
}

func statusCodeOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrProfileNotFound),
		errors.Is(err, usecase.ErrIntegrationNotFound),
		errors.Is(err, usecase.ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrProfileExists),
		errors.Is(err, usecase.ErrDetailsWhileAvailable),
		errors.Is(err, usecase.ErrDashboardClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
