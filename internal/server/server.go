// Package server provides the HTTP API for scholar.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/scholar/internal/config"
	"github.com/hyperjump/scholar/internal/indexer"
	"github.com/hyperjump/scholar/internal/llm"
	"github.com/hyperjump/scholar/internal/models"
	"github.com/hyperjump/scholar/internal/search"
	"go.uber.org/zap"
)

// Retriever is the query side the server needs.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) (*models.RetrievalResult, error)
	Suggest(query string) string
	Stats(ctx context.Context) (search.Stats, error)
}

// Ingester rebuilds the indexes from a directory.
type Ingester interface {
	Ingest(ctx context.Context, dir string) (*indexer.IngestReport, error)
}

// Server is the HTTP server for the scholar API.
type Server struct {
	cfg      *config.Config
	chat     llm.ChatModel // nil disables /ask
	ingester Ingester      // nil disables /ingest
	logger   *zap.Logger
	server   *http.Server

	mu        sync.RWMutex
	retriever Retriever
	reload    func(ctx context.Context) (Retriever, error)
}

// Option configures a Server.
type Option func(*Server)

// WithChatModel enables POST /api/v1/ask.
func WithChatModel(m llm.ChatModel) Option {
	return func(s *Server) { s.chat = m }
}

// WithIngester enables POST /api/v1/ingest. After a successful run the
// retriever is replaced with the one returned by reload.
func WithIngester(i Ingester, reload func(ctx context.Context) (Retriever, error)) Option {
	return func(s *Server) { s.ingester, s.reload = i, reload }
}

// NewServer creates a server. retriever may be nil when nothing has been
// ingested yet; queries then fail with 503 until SetRetriever is called.
func NewServer(retriever Retriever, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{retriever: retriever, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRetriever swaps the retriever used by query handlers.
func (s *Server) SetRetriever(r Retriever) {
	s.mu.Lock()
	s.retriever = r
	s.mu.Unlock()
}

func (s *Server) currentRetriever() Retriever {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retriever
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
