package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
)

var allowedBillExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

func (rt *Router) assessCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.BillMaxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, "uploaded bill exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedBillExtensions[ext] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported bill type, expected .pdf or .txt")
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, "uploaded bill exceeds the size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "read uploaded file")
		return
	}

	assessment := rt.assessor.ProcessCase(r.Context(), payload)
	rt.persistAssessment(r.Context(), assessment)

	// Extraction is the only fatal stage, so a terminal error case means
	// the bill itself was unreadable.
	status := http.StatusOK
	if assessment.Status == domain.CaseError {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"success":    assessment.Status == domain.CaseCompleted,
		"assessment": assessment,
	})
}

// persistAssessment is best-effort: the student already has their result,
// so a storage hiccup is logged and counted rather than turned into a
// failed request.
func (rt *Router) persistAssessment(ctx context.Context, assessment *domain.CaseAssessment) {
	if rt.assessments == nil {
		return
	}
	if err := rt.assessments.Save(ctx, assessment); err != nil {
		slog.Warn("persist assessment failed",
			slog.String("case_id", assessment.ID),
			slog.String("error", err.Error()))
		if rt.metrics != nil {
			rt.metrics.StageFailure("PERSIST")
		}
	}
}

func (rt *Router) listCases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	cases, err := rt.assessments.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cases": cases,
		"count": len(cases),
	})
}

func (rt *Router) getCaseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/cases/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "case id is required")
		return
	}

	assessment, err := rt.assessments.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
