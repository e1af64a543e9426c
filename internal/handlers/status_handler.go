package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// StatusHandler serves application status, stats and health endpoints
type StatusHandler struct {
	config    *common.Config
	storage   interfaces.SignalStorage
	logger    arbor.ILogger
	startTime time.Time

	mu      sync.RWMutex
	lastRun *models.RunStats
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(config *common.Config, storage interfaces.SignalStorage, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:    config,
		storage:   storage,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Register subscribes the handler to run completion events so /api/status
// can report the most recent run
func (h *StatusHandler) Register(events interfaces.EventService) error {
	return events.Subscribe(interfaces.EventRunCompleted, h.handleRunCompleted)
}

func (h *StatusHandler) handleRunCompleted(ctx context.Context, event interfaces.Event) error {
	stats, ok := event.Payload.(*models.RunStats)
	if !ok {
		return nil
	}
	h.mu.Lock()
	h.lastRun = stats
	h.mu.Unlock()
	return nil
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	signalCount, err := h.storage.Count(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count signals for status")
		signalCount = -1
	}

	h.mu.RLock()
	lastRun := h.lastRun
	h.mu.RUnlock()

	status := map[string]interface{}{
		"status":            "running",
		"version":           common.GetVersion(),
		"environment":       h.config.Environment,
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
		"signals":           signalCount,
		"extraction_mode":   h.config.Extraction.Mode,
		"scheduler_enabled": h.config.Scheduler.Enabled,
		"alerts_enabled":    h.config.Alerts.Enabled,
		"paper_enabled":     h.config.Paper.Enabled,
	}
	if lastRun != nil {
		status["last_run"] = lastRun
	}

	WriteJSON(w, http.StatusOK, status)
}

// StatsHandler handles GET /api/stats with aggregate counts over stored
// signals
func (h *StatusHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	signals, err := h.storage.List(r.Context(), interfaces.SignalFilter{Limit: 1000})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list signals for stats")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	byType := make(map[string]int)
	bySentiment := make(map[string]int)
	confidenceSum := 0
	for _, signal := range signals {
		byType[string(signal.SignalType)]++
		bySentiment[string(signal.Sentiment)]++
		confidenceSum += signal.Confidence
	}

	avgConfidence := 0.0
	if len(signals) > 0 {
		avgConfidence = float64(confidenceSum) / float64(len(signals))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total":          len(signals),
		"by_type":        byType,
		"by_sentiment":   bySentiment,
		"avg_confidence": avgConfidence,
	})
}

// HealthHandler handles GET /health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
