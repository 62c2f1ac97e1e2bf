package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-artist-directory/directory"
)

// Server is the HTTP front for the directory services.
type Server struct {
	addr   string
	ingest *directory.IngestService
	query  *directory.QueryService
	logger *slog.Logger
}

// NewServer builds the server; Run starts it.
func NewServer(addr string, ingest *directory.IngestService, query *directory.QueryService, logger *slog.Logger) *Server {
	return &Server{
		addr:   addr,
		ingest: ingest,
		query:  query,
		logger: logger,
	}
}

// Handler returns the routed handler with middleware applied. Exposed so
// tests can drive the full stack through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /artists", s.handleCreateArtist)
	mux.HandleFunc("GET /artists/{id}", s.handleGetArtist)
	mux.HandleFunc("PUT /artists/{id}", s.handleUpdateArtist)
	mux.HandleFunc("GET /search-artists", s.handleSearchArtists)
	mux.HandleFunc("GET /cities", s.handleListCities)
	mux.HandleFunc("GET /shops", s.handleListShops)
	mux.HandleFunc("GET /shops/{id}", s.handleGetShop)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return requestID(corsOpen(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
