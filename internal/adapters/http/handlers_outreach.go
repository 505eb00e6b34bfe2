package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/scholarshield/backend/internal/core/domain"
)

func (rt *Router) draftGrantEssay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req domain.GrantEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	essay, err := rt.essayist.DraftGrantEssay(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"essay":        essay.Essay,
		"generated_at": essay.GeneratedAt,
	})
}

func (rt *Router) explainToParent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		CaseID   string `json:"case_id"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.CaseID) == "" {
		writeError(w, http.StatusBadRequest, "case_id is required")
		return
	}
	if req.Language == "" {
		req.Language = "es"
	}

	assessment, err := rt.assessments.GetByID(r.Context(), req.CaseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	explanation, err := rt.explainer.Explain(r.Context(), assessment, req.Language)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"explanation": explanation,
	})
}
