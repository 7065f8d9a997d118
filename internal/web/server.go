package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/emiliopalmerini/factoryvision/internal/monitor"
	"github.com/emiliopalmerini/factoryvision/internal/ports"
	sharedmw "github.com/emiliopalmerini/factoryvision/internal/shared/middleware"
)

//go:embed static/*
var staticFiles embed.FS

// Monitor is the part of *monitor.Monitor the web surface reads.
type Monitor interface {
	State() monitor.State
	Refresh(ctx context.Context) error
	Interval() time.Duration
}

type Server struct {
	router  chi.Router
	port    int
	monitor Monitor
	history ports.SnapshotStore
	logger  zerolog.Logger
	now     func() time.Time
}

func NewServer(port int, m Monitor, history ports.SnapshotStore, logger zerolog.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		port:    port,
		monitor: m,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(sharedmw.HTMX)
	r.Use(sharedmw.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.handleDashboard)
	r.Get("/fragments/dashboard", s.handleFragment)

	r.Route("/api", func(r chi.Router) {
		r.Post("/refresh", s.handleAPIRefresh)
		r.Get("/snapshot", s.handleAPISnapshot)
		r.Get("/history", s.handleAPIHistory)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Msgf("Starting server at http://localhost:%d", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown")
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
