package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// mockSignalStorage implements interfaces.SignalStorage for testing
type mockSignalStorage struct {
	listFunc  func(ctx context.Context, filter interfaces.SignalFilter) ([]*models.Signal, error)
	getFunc   func(ctx context.Context, signalID string) (*models.Signal, error)
	countFunc func(ctx context.Context) (int, error)
}

func (m *mockSignalStorage) Save(ctx context.Context, signal *models.Signal) error {
	return nil
}

func (m *mockSignalStorage) Get(ctx context.Context, signalID string) (*models.Signal, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, signalID)
	}
	return nil, models.ErrSignalNotFound
}

func (m *mockSignalStorage) List(ctx context.Context, filter interfaces.SignalFilter) ([]*models.Signal, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockSignalStorage) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func createTestSignal(id, ticker string) *models.Signal {
	now := time.Now().UTC()
	return &models.Signal{
		SignalID:   id,
		SignalType: models.SignalFDAApproval,
		Ticker:     ticker,
		Company:    "Pfizer Inc",
		Confidence: 85,
		Sentiment:  models.SentimentPositive,
		Sources:    []models.SourceRef{{Name: "fda", URL: "https://fda.gov/x", Reliability: 1.0}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestListHandler_ParsesFilters(t *testing.T) {
	var captured interfaces.SignalFilter
	storage := &mockSignalStorage{
		listFunc: func(ctx context.Context, filter interfaces.SignalFilter) ([]*models.Signal, error) {
			captured = filter
			return []*models.Signal{createTestSignal("sig_1", "PFE")}, nil
		},
	}
	handler := NewSignalHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/signals?ticker=pfe&type=FDA_APPROVAL&min_confidence=70&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if captured.Ticker != "PFE" {
		t.Errorf("Expected ticker uppercased to PFE, got %q", captured.Ticker)
	}
	if captured.SignalType != "FDA_APPROVAL" || captured.MinConfidence != 70 || captured.Limit != 10 {
		t.Errorf("Unexpected filter: %+v", captured)
	}

	var body struct {
		Count   int              `json:"count"`
		Signals []*models.Signal `json:"signals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Count != 1 || len(body.Signals) != 1 {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestListHandler_RejectsBadParams(t *testing.T) {
	handler := NewSignalHandler(&mockSignalStorage{}, arbor.NewLogger())

	cases := []string{
		"/api/signals?min_confidence=abc",
		"/api/signals?min_confidence=200",
		"/api/signals?limit=0",
		"/api/signals?type=BOGUS",
	}
	for _, url := range cases {
		req := httptest.NewRequest("GET", url, nil)
		rec := httptest.NewRecorder()
		handler.ListHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", url, rec.Code)
		}
	}
}

func TestListHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSignalHandler(&mockSignalStorage{}, arbor.NewLogger())

	req := httptest.NewRequest("POST", "/api/signals", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestGetHandler_ReturnsSignal(t *testing.T) {
	storage := &mockSignalStorage{
		getFunc: func(ctx context.Context, signalID string) (*models.Signal, error) {
			if signalID == "sig_abc" {
				return createTestSignal("sig_abc", "MRNA"), nil
			}
			return nil, models.ErrSignalNotFound
		},
	}
	handler := NewSignalHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/signals/sig_abc", nil)
	rec := httptest.NewRecorder()
	handler.GetHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var signal models.Signal
	if err := json.Unmarshal(rec.Body.Bytes(), &signal); err != nil {
		t.Fatalf("Failed to decode signal: %v", err)
	}
	if signal.SignalID != "sig_abc" || signal.Ticker != "MRNA" {
		t.Errorf("Unexpected signal: %+v", signal)
	}
}

func TestGetHandler_NotFound(t *testing.T) {
	handler := NewSignalHandler(&mockSignalStorage{}, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/signals/sig_missing", nil)
	rec := httptest.NewRecorder()
	handler.GetHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
