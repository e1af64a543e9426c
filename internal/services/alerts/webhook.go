// Package alerts pushes high-confidence signals to a Discord-compatible
// webhook as the engine emits them.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/common"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
	"golang.org/x/time/rate"
)

// Embed colors per sentiment
const (
	colorGreen = 0x00ff00
	colorRed   = 0xff0000
	colorGray  = 0x808080
)

// webhookPayload is the Discord webhook request body
type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Alerter posts signal embeds to a webhook, filtered by a minimum
// confidence and rate limited
type Alerter struct {
	webhookURL    string
	minConfidence int
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        arbor.ILogger
}

// NewAlerter creates an Alerter from configuration
func NewAlerter(cfg *common.AlertsConfig, logger arbor.ILogger) (*Alerter, error) {
	if cfg.WebhookURL == "" {
		return nil, fmt.Errorf("webhook URL is required for alerts (set MEDSIGNALS_WEBHOOK_URL or alerts.webhook_url in config)")
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Alerter{
		webhookURL:    cfg.WebhookURL,
		minConfidence: cfg.MinConfidence,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		limiter:       rate.NewLimiter(rate.Limit(perSecond), perSecond),
		logger:        logger,
	}, nil
}

// Register subscribes the alerter to signal events
func (a *Alerter) Register(events interfaces.EventService) error {
	if err := events.Subscribe(interfaces.EventSignalCreated, a.HandleEvent); err != nil {
		return err
	}
	return events.Subscribe(interfaces.EventSignalUpdated, a.HandleEvent)
}

// HandleEvent posts one signal event to the webhook when it clears the
// confidence threshold
func (a *Alerter) HandleEvent(ctx context.Context, event interfaces.Event) error {
	signal, ok := event.Payload.(*models.Signal)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s event", event.Type)
	}
	if signal.Confidence < a.minConfidence {
		a.logger.Debug().
			Str("signal_id", signal.SignalID).
			Int("confidence", signal.Confidence).
			Msg("Signal below alert threshold, skipping")
		return nil
	}
	return a.post(ctx, signal, event.Type == interfaces.EventSignalUpdated)
}

func (a *Alerter) post(ctx context.Context, signal *models.Signal, updated bool) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(webhookPayload{Embeds: []embed{buildEmbed(signal, updated)}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(detail))
	}

	a.logger.Info().
		Str("signal_id", signal.SignalID).
		Str("ticker", signal.Ticker).
		Int("confidence", signal.Confidence).
		Msg("Posted signal alert")
	return nil
}

// buildEmbed renders one signal as a Discord embed
func buildEmbed(signal *models.Signal, updated bool) embed {
	title := fmt.Sprintf("%s - $%s", strings.ReplaceAll(string(signal.SignalType), "_", " "), signal.Ticker)
	if updated {
		title += " (updated)"
	}

	sourceNames := make([]string, 0, len(signal.Sources))
	for _, source := range signal.Sources {
		sourceNames = append(sourceNames, source.Name)
	}

	return embed{
		Title:     title,
		Color:     sentimentColor(signal.Sentiment),
		Timestamp: signal.UpdatedAt.Format(time.RFC3339),
		Fields: []embedField{
			{Name: "Confidence", Value: fmt.Sprintf("%d%%", signal.Confidence), Inline: true},
			{Name: "Sentiment", Value: string(signal.Sentiment), Inline: true},
			{Name: "Company", Value: signal.Company, Inline: true},
			{Name: "Target Upside", Value: fmt.Sprintf("%.1f%%", signal.TargetUpsidePct), Inline: true},
			{Name: "Target Downside", Value: fmt.Sprintf("%.1f%%", signal.TargetDownsidePct), Inline: true},
			{Name: "Sources", Value: strings.Join(sourceNames, ", "), Inline: false},
		},
	}
}

func sentimentColor(sentiment models.Sentiment) int {
	switch sentiment {
	case models.SentimentPositive:
		return colorGreen
	case models.SentimentNegative:
		return colorRed
	}
	return colorGray
}
