package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"pocketclinic/internal/core"
	"pocketclinic/pkg"
)

// maxAudioBytes matches the speech-to-text upload limit.
const maxAudioBytes = 25 << 20

// Processor runs one triage request.  *core.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, req core.Request) (*pkg.TriageReport, error)
}

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Pipeline Processor
	Logger   *slog.Logger
	Version  string
}

// NewServer constructs a Server.
func NewServer(pipeline Processor, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Pipeline: pipeline, Logger: logger, Version: version}
}

// ServeHTTP logs each request and recovers from handler panics before
// dispatching to route.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.Logger.Info("request started", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
	defer func() {
		if v := recover(); v != nil {
			s.Logger.Error("request panicked", "method", r.Method, "path", r.URL.Path, "panic", v, "stack", string(debug.Stack()))
			if !rec.wrote {
				writeJSON(rec, http.StatusInternalServerError, pkg.ProcessResponse{
					Status:  pkg.StatusError,
					Message: "Internal server error",
					Details: map[string]interface{}{"error": "unexpected failure"},
				})
			}
		}
		s.Logger.Info("request completed", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	}()
	s.route(rec, r)
}

// route dispatches incoming requests based on the URL path.  Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		s.handleRoot(w, r)
	case path == "/health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	// Text or symptom list: POST /api/v1/process
	case path == "/api/v1/process" && r.Method == http.MethodPost:
		s.handleProcess(w, r)
	// Voice note: POST /api/v1/process/audio (multipart)
	case path == "/api/v1/process/audio" && r.Method == http.MethodPost:
		s.handleProcessAudio(w, r)
	case path == "/api/v1/process" || path == "/api/v1/process/audio" || path == "/health":
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	default:
		writeError(w, http.StatusNotFound, "not found", nil)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to PocketClinic API",
		"version": s.Version,
	})
}

// handleProcess accepts {phone_number, text_message, symptoms} as JSON and
// runs the triage pipeline.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var in pkg.ProcessRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	s.run(w, r, core.Request{
		PhoneNumber: in.PhoneNumber,
		Text:        in.TextMessage,
		Symptoms:    in.Symptoms,
	})
}

// handleProcessAudio accepts a multipart form with phone_number and
// audio_file fields.
func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+1<<20)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio_file is required", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read audio_file", err)
		return
	}
	if len(data) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "audio_file exceeds 25 MB", nil)
		return
	}
	s.run(w, r, core.Request{
		PhoneNumber: r.FormValue("phone_number"),
		Audio:       &core.Audio{Filename: header.Filename, Data: data},
	})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, req core.Request) {
	report, err := s.Pipeline.Process(r.Context(), req)
	switch {
	case errors.Is(err, core.ErrNoInput):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	case errors.Is(err, core.ErrTranscription):
		s.Logger.Error("transcription failed", "err", err)
		writeError(w, http.StatusBadGateway, "Error processing request", err)
		return
	case errors.Is(err, core.ErrInternal):
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	case err != nil:
		s.Logger.Error("processing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Error processing request", err)
		return
	}
	writeJSON(w, http.StatusOK, pkg.ProcessResponse{
		Status:  pkg.StatusSuccess,
		Message: "Request processed successfully",
		Details: map[string]interface{}{"result": report},
	})
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := pkg.ProcessResponse{Status: pkg.StatusError, Message: message}
	if err != nil {
		resp.Details = map[string]interface{}{"error": err.Error()}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.wrote = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}
