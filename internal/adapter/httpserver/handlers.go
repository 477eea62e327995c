package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/config"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
	"github.com/fairyhunter13/ai-candidate-ranker/internal/usecase"
)

// Server aggregates handler dependencies. Readiness checks are optional;
// a nil check means the backing service is not configured and is skipped.
type Server struct {
	Cfg        config.Config
	Pipeline   usecase.PipelineService
	Results    usecase.ResultService
	Questions  usecase.QuestionService
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
	KafkaCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, pipeline usecase.PipelineService, results usecase.ResultService, questions usecase.QuestionService, dbCheck, redisCheck, kafkaCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:        cfg,
		Pipeline:   pipeline,
		Results:    results,
		Questions:  questions,
		DBCheck:    dbCheck,
		RedisCheck: redisCheck,
		KafkaCheck: kafkaCheck,
	}
}

func acceptsJSON(r *http.Request) bool {
	a := r.Header.Get("Accept")
	return a == "" || a == "*/*" || strings.Contains(a, "application/json")
}

func writeNotAcceptable(w http.ResponseWriter, accept string) {
	writeJSON(w, http.StatusNotAcceptable, errorEnvelope{Error: apiError{
		Code:    "INVALID_ARGUMENT",
		Message: "not acceptable",
		Details: map[string]any{"accept": accept},
	}})
}

// allowedCSVMIME accepts what CSV content legitimately sniffs as. Detectors
// classify header-only or loosely structured CSV as plain text, so any text
// type passes; the CSV parser is the real gate.
func allowedCSVMIME(m string) bool {
	m = strings.ToLower(m)
	return strings.HasPrefix(m, "text/") || strings.HasPrefix(m, "application/csv")
}

// UploadHandler accepts a multipart CSV of candidates, parses it
// synchronously, and starts the ranking pipeline as a detached background
// run. The response returns immediately with the run id for polling.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeNotAcceptable(w, r.Header.Get("Accept"))
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
					Code:    "INVALID_ARGUMENT",
					Message: "payload too large",
					Details: map[string]any{"max_mb": s.Cfg.MaxUploadMB},
				}})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: csv file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read upload: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code:    "INVALID_ARGUMENT",
				Message: "unsupported media type (extension)",
				Details: map[string]any{"filename": header.Filename},
			}})
			return
		}
		m := mimetype.Detect(data)
		if !allowedCSVMIME(m.String()) {
			writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
				Code:    "INVALID_ARGUMENT",
				Message: "unsupported media type (content)",
				Details: map[string]any{"mime": m.String(), "filename": header.Filename},
			}})
			return
		}

		rows, err := usecase.ParseCandidatesCSV(bytes.NewReader(data))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		run, err := s.Pipeline.Start(r.Context(), rows)
		if err != nil {
			writeError(w, r, fmt.Errorf("start run: %w", err), nil)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"status":     "started",
			"run_id":     run.ID(),
			"candidates": len(rows),
		})
	}
}

// StatusHandler returns a point-in-time snapshot of the current run, or of a
// specific run when run_id is given. Safe to poll: a pure read, no
// recomputation.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeNotAcceptable(w, r.Header.Get("Accept"))
			return
		}
		snap, err := s.Results.Status(r.URL.Query().Get("run_id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// ResultsHandler returns the ranked candidate list: complete after the run
// finishes, partial while batches are still processing, 409 before any run.
func (s *Server) ResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeNotAcceptable(w, r.Header.Get("Accept"))
			return
		}
		list, status, err := s.Results.Results(r.URL.Query().Get("run_id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     status,
			"candidates": list,
		})
	}
}

// QuestionsHandler returns the candidate's interview questions, generating
// them on first request.
func (s *Server) QuestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeNotAcceptable(w, r.Header.Get("Accept"))
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, r, fmt.Errorf("%w: candidate id missing", domain.ErrInvalidArgument), nil)
			return
		}
		questions, err := s.Questions.QuestionsFor(r.Context(), r.URL.Query().Get("run_id"), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"candidate_id": id,
			"questions":    questions,
		})
	}
}

type runSummary struct {
	RunID           string           `json:"run_id"`
	Status          domain.RunStatus `json:"status"`
	CandidatesTotal int              `json:"candidates_total"`
	Model           string           `json:"model"`
	Error           string           `json:"error,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
}

// RunsHandler lists archived runs, newest first. 404 when no archive is
// configured.
func (s *Server) RunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(r) {
			writeNotAcceptable(w, r.Header.Get("Accept"))
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidArgument), nil)
				return
			}
			limit = n
		}
		recs, err := s.Results.RecentRuns(r.Context(), limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		runs := make([]runSummary, 0, len(recs))
		for _, rec := range recs {
			runs = append(runs, runSummary{
				RunID:           rec.RunID,
				Status:          rec.Status,
				CandidatesTotal: rec.CandidatesTotal,
				Model:           rec.Model,
				Error:           rec.Error,
				StartedAt:       rec.StartedAt,
				FinishedAt:      rec.FinishedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

// ReadyzHandler probes the configured backing services: Postgres, Redis, and
// Kafka. Unconfigured services are skipped rather than failed.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 3)
		probe := func(name string, fn func(context.Context) error) {
			if fn == nil {
				return
			}
			if err := fn(ctx); err != nil {
				checks = append(checks, check{Name: name, OK: false, Details: err.Error()})
				return
			}
			checks = append(checks, check{Name: name, OK: true})
		}
		probe("db", s.DBCheck)
		probe("redis", s.RedisCheck)
		probe("kafka", s.KafkaCheck)

		st := http.StatusOK
		for _, c := range checks {
			if !c.OK {
				st = http.StatusServiceUnavailable
				break
			}
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
