package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/gradeview/internal/backend"
	"github.com/dgallion1/gradeview/internal/config"
	"github.com/dgallion1/gradeview/internal/pipeline"
)

// Server is the HTTP API server for gradeview.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	backend      *backend.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. client may be nil when
// no grading service is configured; the routes that need it answer 503.
func NewServer(orch *pipeline.Orchestrator, client *backend.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		backend:      client,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/view", s.handleView)
		r.Post("/api/normalize", s.handleNormalize)
		r.Post("/api/export", s.handleExport)
		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/scores/decode", s.handleDecodeScores)

		r.Post("/api/answers/compose", s.handleCompose)
		r.Get("/api/answers/{answerID}/view", s.handleAnswerView)
		r.Get("/api/answers/{answerID}/export", s.handleAnswerExport)

		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{batchID}", s.handleImportBatch)
		r.Get("/api/import/jobs/{jobID}", s.handleImportJob)

		r.Get("/api/stats/backend", s.handleBackendStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
