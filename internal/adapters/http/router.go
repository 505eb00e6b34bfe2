package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/scholarshield/backend/internal/config"
	"github.com/scholarshield/backend/internal/core/ports"
	"github.com/scholarshield/backend/internal/observability/metrics"
)

type Router struct {
	cfg         config.Config
	assessor    ports.CaseAssessor
	ingestor    ports.HandbookIngestor
	essayist    ports.GrantEssayWriter
	explainer   ports.ParentExplainer
	assessments ports.AssessmentRepository
	handbooks   ports.HandbookRepository
	metrics     *metrics.ServerMetrics
}

func NewRouter(
	cfg config.Config,
	assessor ports.CaseAssessor,
	ingestor ports.HandbookIngestor,
	essayist ports.GrantEssayWriter,
	explainer ports.ParentExplainer,
	assessments ports.AssessmentRepository,
	handbooks ports.HandbookRepository,
	serverMetrics *metrics.ServerMetrics,
) *Router {
	return &Router{
		cfg:         cfg,
		assessor:    assessor,
		ingestor:    ingestor,
		essayist:    essayist,
		explainer:   explainer,
		assessments: assessments,
		handbooks:   handbooks,
		metrics:     serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/openapi.json", rt.openapiDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("/api/v1/cases/assess", rt.assessCase)
	mux.HandleFunc("/api/v1/cases/export", rt.exportCases)
	mux.HandleFunc("/api/v1/cases", rt.listCases)
	mux.HandleFunc("/api/v1/cases/", rt.getCaseByID)
	mux.HandleFunc("/api/v1/handbooks", rt.uploadHandbook)
	mux.HandleFunc("/api/v1/handbooks/", rt.getHandbookByID)
	mux.HandleFunc("/api/v1/essays/grant", rt.draftGrantEssay)
	mux.HandleFunc("/api/v1/explain/parent", rt.explainToParent)

	handler := apiContract.requestValidationMiddleware(mux)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, time.Duration(rt.cfg.APIQueueTimeoutMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = recoveryMiddleware(handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
