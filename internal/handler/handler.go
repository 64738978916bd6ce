// Package handler exposes the grading operations as a JSON HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/grader/internal/model"
	"github.com/pavelanni/grader/internal/service"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc *service.Service
}

// New creates a new Handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/templates", h.handleSaveTemplate)
	r.Post("/templates/{templateID}/analyze", h.handleAnalyzeTemplate)
	r.Post("/templates/{templateID}/batch", h.handleBatch)
	r.Post("/templates/{templateID}/grade", h.handleGradeAll)
	r.Post("/submissions", h.handleUploadSubmission)
	r.Post("/submissions/{submissionID}/extract", h.handleExtractSubmission)
	r.Get("/submissions", h.handleListSubmissions)
}

type fileRequest struct {
	FilePath string `json:"file_path"`
}

type uploadRequest struct {
	TemplateID string `json:"template_id"`
	FilePath   string `json:"file_path"`
}

type folderRequest struct {
	FolderPath string `json:"folder_path"`
}

func (h *Handler) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.svc.SaveTemplate(r.Context(), req.FilePath)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":      "success",
		"template_id": id,
		"message":     "Template saved.",
	})
}

func (h *Handler) handleAnalyzeTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	summary, err := h.svc.AnalyzeTemplate(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":      "success",
		"template_id": id,
		"summary":     summary,
	})
}

func (h *Handler) handleUploadSubmission(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.svc.UploadSubmission(r.Context(), req.TemplateID, req.FilePath)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":        "success",
		"submission_id": id,
	})
}

func (h *Handler) handleExtractSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "submissionID")
	summary, err := h.svc.ExtractSubmission(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":        "success",
		"submission_id": id,
		"summary":       summary,
	})
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	var req folderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	batch, err := h.svc.BatchProcess(r.Context(), id, req.FolderPath)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status": "completed",
		"batch":  batch,
	})
}

func (h *Handler) handleGradeAll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	path, err := h.svc.GradeAll(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":      "success",
		"report_path": path,
		"message":     "Grading complete. Report written to " + path,
	})
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	summaries, counts, err := h.svc.ListSubmissions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, map[string]any{
		"status":      "success",
		"summary":     counts,
		"submissions": summaries,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondStatus(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondError maps the failure taxonomy onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrMalformedExtraction),
		errors.Is(err, model.ErrUnsupportedFormat):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrNoStructure),
		errors.Is(err, model.ErrNoSubmissions):
		status = http.StatusConflict
	case errors.Is(err, model.ErrStoreUnavailable),
		errors.Is(err, model.ErrExtractionService):
		status = http.StatusServiceUnavailable
	}
	respondStatus(w, status, err.Error())
}

func respondStatus(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	}); err != nil {
		slog.Error("encode error response", "error", err)
	}
}
