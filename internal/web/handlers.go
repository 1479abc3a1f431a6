package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/wlcaudit/internal/model"
	"github.com/nao1215/wlcaudit/internal/parser"
	"github.com/nao1215/wlcaudit/internal/pipeline"
	"github.com/nao1215/wlcaudit/internal/sample"
)

// msgProcessFailed is returned for every analysis failure so parser
// internals never reach the client.
const msgProcessFailed = "failed to process file"

// AnalyzeResponse is the body of a successful POST /api/analyze.
type AnalyzeResponse struct {
	RunID       string             `json:"run_id"`
	Device      model.DeviceInfo   `json:"device"`
	Digest      string             `json:"digest"`
	UsedSample  bool               `json:"used_sample"`
	Inventory   model.Inventory    `json:"inventory"`
	Issues      []model.Deviation  `json:"issues"`
	Diagnostics []model.Diagnostic `json:"diagnostics"`
	Summary     model.Summary      `json:"summary"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// handleAnalyze analyzes an uploaded running-config.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(s.cfg.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "file too large", err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, "invalid form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll() //nolint:errcheck // temp file cleanup
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "no file provided", err)
		return
	}
	defer file.Close()

	policy := pipeline.Policy{
		MaxFileSize:       s.cfg.MaxFileSize,
		AllowedExtensions: s.cfg.AllowedExtensions,
	}
	if err := policy.Check(header.Filename, header.Size); err != nil {
		s.writePolicyError(w, r, err)
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxFileSize+1))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}

	report := pipeline.NewReport(header.Filename)
	report.Content = content

	p := pipeline.DefaultPipeline(s.cfg, s.saver, s.logger)
	if err := p.Execute(r.Context(), report); err != nil {
		if errors.Is(err, pipeline.ErrFileTooLarge) || errors.Is(err, pipeline.ErrUnsupportedFileType) {
			s.writePolicyError(w, r, err)
			return
		}
		if errors.Is(err, parser.ErrParseFailed) {
			s.writeError(w, r, http.StatusUnprocessableEntity, msgProcessFailed, err)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, msgProcessFailed, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newAnalyzeResponse(report))
}

// handleSample returns the bundled example running-config.
func (s *Server) handleSample(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="running-config.cfg"`)
	if _, err := io.WriteString(w, sample.Config); err != nil {
		s.logger.Warn("failed to write sample", "error", err)
	}
}

func newAnalyzeResponse(report *model.AnalysisReport) AnalyzeResponse {
	issues := report.Deviations
	if issues == nil {
		issues = []model.Deviation{}
	}
	diagnostics := report.Diagnostics
	if diagnostics == nil {
		diagnostics = []model.Diagnostic{}
	}
	return AnalyzeResponse{
		RunID:       report.RunID,
		Device:      report.Device,
		Digest:      report.Digest,
		UsedSample:  report.UsedSample,
		Inventory:   report.Inventory,
		Issues:      issues,
		Diagnostics: diagnostics,
		Summary:     report.Summary(),
	}
}

// writePolicyError maps an input policy violation to a status code.
func (s *Server) writePolicyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pipeline.ErrFileTooLarge):
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "file too large", err)
	default:
		s.writeError(w, r, http.StatusUnsupportedMediaType, "unsupported file type", err)
	}
}

// writeError logs the full error server-side and sends only message to the
// client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	requestID := middleware.GetReqID(r.Context())
	s.logger.Warn("request error",
		"path", r.URL.Path,
		"status", status,
		"error", err,
		"request_id", requestID,
	)
	s.writeJSON(w, status, ErrorResponse{Error: message, RequestID: requestID})
}

// writeJSON encodes v as JSON and writes it to w.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("json encode error", "error", err)
	}
}
