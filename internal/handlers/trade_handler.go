package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// TradeHandler serves the paper trading read API
type TradeHandler struct {
	storage interfaces.TradeStorage
	logger  arbor.ILogger
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(storage interfaces.TradeStorage, logger arbor.ILogger) *TradeHandler {
	return &TradeHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListTradesHandler handles GET /api/trades with optional ticker and limit
// filters
func (h *TradeHandler) ListTradesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := strings.ToUpper(r.URL.Query().Get("ticker"))
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 1000 {
			WriteError(w, http.StatusBadRequest, "limit must be an integer 1-1000")
			return
		}
		limit = parsed
	}

	trades, err := h.storage.ListTrades(r.Context(), ticker, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list trades")
		WriteError(w, http.StatusInternalServerError, "Failed to list trades")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(trades),
		"trades": trades,
	})
}

// PortfolioHandler handles GET /api/portfolio
func (h *TradeHandler) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	portfolio, err := h.storage.GetPortfolio(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get portfolio")
		WriteError(w, http.StatusInternalServerError, "Failed to get portfolio")
		return
	}
	if portfolio == nil {
		// No trades executed yet
		portfolio = &models.Portfolio{Positions: map[string]models.Position{}}
	}

	WriteJSON(w, http.StatusOK, portfolio)
}
