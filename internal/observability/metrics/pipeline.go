package metrics

// The pipeline methods satisfy the core's metrics port so usecases never
// import prometheus directly.

func (m *ServerMetrics) CaseAssessed(riskLevel, status string, seconds float64) {
	if riskLevel == "" {
		riskLevel = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.casesAssessedTotal.WithLabelValues(m.service, riskLevel, status).Inc()
	m.caseDuration.WithLabelValues(m.service).Observe(seconds)
}

func (m *ServerMetrics) StageFailure(stage string) {
	if stage == "" {
		stage = "unknown"
	}
	m.stageFailuresTotal.WithLabelValues(m.service, stage).Inc()
}

func (m *ServerMetrics) IndexJob(result string) {
	if result == "" {
		result = "unknown"
	}
	m.indexJobsTotal.WithLabelValues(m.service, result).Inc()
}
