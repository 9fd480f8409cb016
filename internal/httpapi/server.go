// Package httpapi exposes the scanner, the job queue, and the translator
// over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/piratarr/piratarr/internal/jobs"
	"github.com/piratarr/piratarr/internal/library"
	"github.com/piratarr/piratarr/internal/service"
)

type Server struct {
	scanner    *library.Scanner
	queue      *jobs.Queue
	store      library.MediaStore
	translator *service.Translator

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithMediaStore enables the media listing and per-item translate routes.
func WithMediaStore(store library.MediaStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

func NewServer(scanner *library.Scanner, queue *jobs.Queue, translator *service.Translator, opts ...Option) *Server {
	s := &Server{
		scanner:    scanner,
		queue:      queue,
		translator: translator,
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/scan", s.handleScan)
	s.mux.HandleFunc("/api/media", s.handleListMedia)
	s.mux.HandleFunc("/api/media/", s.handleTranslateMedia)
	s.mux.HandleFunc("/api/jobs", s.handleListJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleRetryJob)
	s.mux.HandleFunc("/api/translate", s.handleTranslatePath)
	s.mux.HandleFunc("/api/translate/batch", s.handleTranslateBatch)
	s.mux.HandleFunc("/api/preview", s.handlePreview)
}
