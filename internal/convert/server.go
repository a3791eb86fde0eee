package convert

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swairshah/zotero-mcp-server/internal/logger"
)

// maxUploadBytes bounds multipart uploads; large scanned PDFs fit well under
// this.
const maxUploadBytes = 128 << 20

// Server is the HTTP front end of the conversion job service.
//
//	POST /parse            multipart field "paper" -> {"call_id": ...}
//	POST /parse?sync=1     multipart field "paper" -> converted text
//	GET  /result/{call_id} 202 while pending, text once complete
type Server struct {
	jobs      *Jobs
	converter Converter
	router    *chi.Mux
	log       logger.Logger
}

// NewServer wires the routes around the given converter.
func NewServer(converter Converter, log logger.Logger) *Server {
	s := &Server{
		jobs:      NewJobs(converter, log),
		converter: converter,
		router:    chi.NewRouter(),
		log:       log,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/parse", s.handleParse)
	s.router.Get("/result/{callID}", s.handleResult)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form: " + err.Error()})
		return
	}

	file, _, err := r.FormFile("paper")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing multipart field 'paper'"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read upload: " + err.Error()})
		return
	}

	if r.URL.Query().Get("sync") != "" {
		text, err := s.converter.Convert(r.Context(), data)
		if err != nil {
			s.log.Error("Synchronous conversion failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, text)
		return
	}

	callID := s.jobs.Submit(data)
	s.log.Info("Accepted conversion job %s (%d bytes)", callID, len(data))
	writeJSON(w, http.StatusOK, map[string]string{"call_id": callID})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	text, pending, err := s.jobs.Result(callID)
	switch {
	case errors.Is(err, ErrUnknownCall):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	case pending:
		// Matches the submit-and-poll contract: 202 with an empty body
		// until the job completes.
		w.WriteHeader(http.StatusAccepted)
	default:
		writeJSON(w, http.StatusOK, text)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
