// Package api serves circuit analysis over HTTP.
//
// # Routes
//
//	GET    /health                 build info
//	POST   /v1/solve               full solve, returns a report
//	POST   /v1/reduce              constant-part solve, returns a report
//	POST   /v1/classify            classification only
//	POST   /v1/partition           variable/constant partition
//	POST   /v1/render              Graphviz drawing (?kind=graph|currents&output=svg|png|pdf|dot)
//	POST   /v1/analyses            solve and store, returns the stored analysis
//	GET    /v1/analyses            stored analyses, newest first
//	GET    /v1/analyses/{id}       one stored analysis
//	DELETE /v1/analyses/{id}       remove a stored analysis
//
// POST bodies are netlists. The format comes from the format query
// parameter, else from the extension of the filename query parameter, else
// from the Content-Type header (text/plain, application/toml,
// application/json), else defaults to the line format. Solving routes accept
// precision and refresh query parameters.
//
// Errors are JSON objects {"code": "...", "message": "..."} using the codes of
// package errors.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kirchhoff/pkg/pipeline"
	"github.com/matzehuels/kirchhoff/pkg/store"
)

// DefaultMaxBody bounds request bodies.
const DefaultMaxBody = 1 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
}

// New creates a server. A nil store falls back to an in-memory store.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{
		runner:  runner,
		store:   st,
		logger:  logger,
		maxBody: DefaultMaxBody,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.solve(false))
		r.Post("/reduce", s.solve(true))
		r.Post("/classify", s.classify)
		r.Post("/partition", s.partition)
		r.Post("/render", s.render)

		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", s.createAnalysis)
			r.Get("/", s.listAnalyses)
			r.Get("/{id}", s.getAnalysis)
			r.Delete("/{id}", s.deleteAnalysis)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path})
	})
	return r
}
