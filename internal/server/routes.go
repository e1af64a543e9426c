package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (live signal feed)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Signals (read API)
	mux.HandleFunc("/api/signals", s.app.SignalHandler.ListHandler)
	mux.HandleFunc("/api/signals/", s.app.SignalHandler.GetHandler) // GET /{id}

	// API routes - Paper trading
	mux.HandleFunc("/api/trades", s.app.TradeHandler.ListTradesHandler)
	mux.HandleFunc("/api/portfolio", s.app.TradeHandler.PortfolioHandler)

	// API routes - Pipeline
	mux.HandleFunc("/api/run", s.app.RunHandler.TriggerRunHandler) // POST - trigger a run

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/stats", s.app.StatusHandler.StatsHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/health", s.app.StatusHandler.HealthHandler)

	return mux
}
