// Package api exposes the account directory, posting engine and reports as a
// JSON HTTP service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/arung-agamani/yuuka/internal/accounts"
	"github.com/arung-agamani/yuuka/internal/journal"
	"github.com/arung-agamani/yuuka/internal/logger"
	"github.com/arung-agamani/yuuka/internal/model"
	"github.com/arung-agamani/yuuka/internal/reports"
	"github.com/arung-agamani/yuuka/internal/store"
)

// retryAfterSeconds is advertised when storage is busy.
const retryAfterSeconds = "1"

// Server holds the engines behind the HTTP handlers.
type Server struct {
	accounts     *accounts.Directory
	journal      *journal.Service
	reports      *reports.Service
	log          zerolog.Logger
	defaultOwner string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithDefaultOwner sets the owner used when a request has no X-Owner header.
func WithDefaultOwner(owner string) Option {
	return func(s *Server) { s.defaultOwner = owner }
}

// NewServer creates a Server.
func NewServer(dir *accounts.Directory, j *journal.Service, r *reports.Service, opts ...Option) *Server {
	s := &Server{accounts: dir, journal: j, reports: r, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Owner(s.defaultOwner))

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.listGroups)
			r.Post("/", s.createGroup)
			r.Get("/{id}", s.getGroup)
			r.Get("/{id}/aliases", s.listGroupAliases)
		})
		r.Route("/aliases", func(r chi.Router) {
			r.Get("/", s.listAliases)
			r.Post("/", s.addAlias)
			r.Delete("/{alias}", s.removeAlias)
		})
		r.Get("/resolve", s.resolve)
		r.Get("/infer", s.inferType)
		r.Get("/pending", s.pendingNames)
		r.Post("/pending/assign", s.assignName)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.listTransactions)
			r.Post("/", s.postTransaction)
			r.Get("/summary", s.summary)
			r.Get("/{id}", s.getTransaction)
			r.Patch("/{id}", s.updateTransaction)
			r.Delete("/{id}", s.deleteTransaction)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/balances", s.balances)
			r.Get("/trial-balance", s.trialBalance)
			r.Get("/income-statement", s.incomeStatement)
			r.Get("/balance-sheet", s.balanceSheet)
			r.Get("/spending", s.spending)
			r.Get("/ledger/{name}", s.ledger)
		})
	})

	return r
}

// writeServiceError maps engine errors onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrGroupNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrDuplicateGroup), errors.Is(err, model.ErrAliasConflict):
		writeJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, model.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, store.ErrUnavailable):
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Storage is busy, retry later")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSONError(w, http.StatusInternalServerError, "server_error", "Internal server error")
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, handler http.Handler, log zerolog.Logger) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting HTTP server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
