package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// SignalHandler serves the read API over emitted signals
type SignalHandler struct {
	storage interfaces.SignalStorage
	logger  arbor.ILogger
}

// NewSignalHandler creates a new SignalHandler
func NewSignalHandler(storage interfaces.SignalStorage, logger arbor.ILogger) *SignalHandler {
	return &SignalHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/signals with optional filters:
// ticker, type, sentiment, min_confidence, limit
func (h *SignalHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	filter := interfaces.SignalFilter{
		Ticker:     strings.ToUpper(r.URL.Query().Get("ticker")),
		SignalType: strings.ToUpper(r.URL.Query().Get("type")),
		Sentiment:  strings.ToLower(r.URL.Query().Get("sentiment")),
		Limit:      100,
	}
	if v := r.URL.Query().Get("min_confidence"); v != "" {
		minConf, err := strconv.Atoi(v)
		if err != nil || minConf < 0 || minConf > 100 {
			WriteError(w, http.StatusBadRequest, "min_confidence must be an integer 0-100")
			return
		}
		filter.MinConfidence = minConf
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 1000 {
			WriteError(w, http.StatusBadRequest, "limit must be an integer 1-1000")
			return
		}
		filter.Limit = limit
	}
	if filter.SignalType != "" && !models.SignalType(filter.SignalType).Valid() {
		WriteError(w, http.StatusBadRequest, "unknown signal type")
		return
	}

	signals, err := h.storage.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list signals")
		WriteError(w, http.StatusInternalServerError, "Failed to list signals")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(signals),
		"signals": signals,
	})
}

// GetHandler handles GET /api/signals/{id}
func (h *SignalHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	signalID := strings.TrimPrefix(r.URL.Path, "/api/signals/")
	if signalID == "" || strings.Contains(signalID, "/") {
		WriteError(w, http.StatusBadRequest, "Signal ID is required")
		return
	}

	signal, err := h.storage.Get(r.Context(), signalID)
	if err != nil {
		if errors.Is(err, models.ErrSignalNotFound) {
			WriteError(w, http.StatusNotFound, "Signal not found")
			return
		}
		h.logger.Error().Err(err).Str("signal_id", signalID).Msg("Failed to get signal")
		WriteError(w, http.StatusInternalServerError, "Failed to get signal")
		return
	}

	WriteJSON(w, http.StatusOK, signal)
}
