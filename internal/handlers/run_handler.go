package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// PipelineRunner triggers an out-of-schedule pipeline run
type PipelineRunner interface {
	RunNow()
}

// RunHandler triggers pipeline runs over HTTP
type RunHandler struct {
	runner PipelineRunner
	logger arbor.ILogger
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runner PipelineRunner, logger arbor.ILogger) *RunHandler {
	return &RunHandler{
		runner: runner,
		logger: logger,
	}
}

// TriggerRunHandler handles POST /api/run
func (h *RunHandler) TriggerRunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	h.logger.Info().Msg("Pipeline run triggered via API")
	h.runner.RunNow()

	WriteStarted(w, "Pipeline run started")
}
