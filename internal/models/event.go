package models

import "time"

// RawRecord is the wire shape a collector collaborator hands to the engine.
// Field extraction is delegated to the configured extraction strategy; the
// engine treats Extracted as opaque structured data.
type RawRecord struct {
	Source    string          `json:"source"`
	URL       string          `json:"url"`
	TypeHint  string          `json:"type_hint"`
	Timestamp time.Time       `json:"timestamp"`
	RawText   string          `json:"raw_text"`
	Extracted ExtractedFields `json:"extracted"`
}

// ExtractedFields holds the structured fields produced by the NLP layer
type ExtractedFields struct {
	Drug    string `json:"drug,omitempty"`
	Company string `json:"company,omitempty"`
	Ticker  string `json:"ticker,omitempty"`
	CIK     string `json:"cik,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Outcome string `json:"outcome,omitempty"`

	// Trial statistics, when the source text carries them
	Stats TrialStats `json:"stats,omitempty"`
}

// TrialStats carries the numeric statistics extracted from trial reports
type TrialStats struct {
	PValue     float64 `json:"p_value,omitempty"`
	Efficacy   float64 `json:"efficacy,omitempty"`
	Enrollment int     `json:"enrollment,omitempty"`
	NCTID      string  `json:"nct_id,omitempty"`
}

// RawEvent is the canonical, source-agnostic form of a collected record.
// Transient: produced once per record and discarded after the signal
// candidate is built.
type RawEvent struct {
	Source     string
	URL        string
	SignalType SignalType
	Sentiment  Sentiment
	Timestamp  time.Time
	Text       string
	Extracted  ExtractedFields
}

// ResolvedEntity is the output of ticker resolution, cached per company
// string for one pipeline run.
type ResolvedEntity struct {
	Ticker     string
	Company    string
	Tier       ResolutionTier
	Confidence float64
}

// ResolutionTier records which matching strategy produced a ticker
type ResolutionTier string

const (
	TierManual   ResolutionTier = "manual"
	TierFuzzy    ResolutionTier = "fuzzy"
	TierExternal ResolutionTier = "external"
)

// RunStats aggregates per-run counts of dropped, unresolved and invalid
// events, reported alongside the emitted signals.
type RunStats struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	Processed         int       `json:"processed"`
	Emitted           int       `json:"emitted"`
	Merged            int       `json:"merged"`
	DroppedNormalized int       `json:"dropped_normalization"`
	Unresolved        int       `json:"unresolved"`
	Invalid           int       `json:"invalid"`
	CollectorFailures int       `json:"collector_failures"`
}
