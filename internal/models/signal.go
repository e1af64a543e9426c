// Package models defines shared data types used across the signal engine.
//
// Conventions:
//   - Timestamps: time.Time in UTC
//   - Confidence: integer 0-100 on emitted signals, float64 0-1 on
//     intermediate resolution results
//   - Signal IDs: deterministic, derived from the dedup key so re-running
//     the pipeline on identical input reproduces identical ids
package models

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"time"
)

func init() {
	// Register types for gob encoding (required for BadgerHold storage)
	gob.Register(Signal{})
	gob.Register(SourceRef{})
	gob.Register(PaperTrade{})
	gob.Register(Position{})
}

// SignalType classifies the market event a signal describes
type SignalType string

const (
	SignalFDAApproval     SignalType = "FDA_APPROVAL"
	SignalFDARejection    SignalType = "FDA_REJECTION"
	SignalFDAWarning      SignalType = "FDA_WARNING"
	SignalTrialSuccess    SignalType = "TRIAL_SUCCESS"
	SignalTrialFailure    SignalType = "TRIAL_FAILURE"
	SignalTrialAdvance    SignalType = "TRIAL_PHASE_ADVANCE"
	SignalSECFiling       SignalType = "SEC_FILING"
	SignalRedditSentiment SignalType = "REDDIT_SENTIMENT"
)

// Valid reports whether the signal type is one of the known enum values
func (t SignalType) Valid() bool {
	switch t {
	case SignalFDAApproval, SignalFDARejection, SignalFDAWarning,
		SignalTrialSuccess, SignalTrialFailure, SignalTrialAdvance,
		SignalSECFiling, SignalRedditSentiment:
		return true
	}
	return false
}

// Sentiment is the direction a signal implies
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SourceRef identifies one corroborating source of a signal
type SourceRef struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Reliability float64 `json:"reliability"`
}

// Signal is the final, confidence-scored, deduplicated trading
// recommendation record emitted by the engine.
type Signal struct {
	SignalID   string     `json:"signal_id" badgerhold:"key" validate:"required"`
	SignalType SignalType `json:"signal_type" validate:"required"`
	Ticker     string     `json:"ticker" validate:"required"`
	Company    string     `json:"company" validate:"required"`
	Confidence int        `json:"confidence" validate:"gte=0,lte=100"`
	Sentiment  Sentiment  `json:"sentiment" validate:"oneof=positive negative neutral"`

	// Expected price moves, percent of current price
	TargetUpsidePct   float64 `json:"target_upside_pct"`
	TargetDownsidePct float64 `json:"target_downside_pct"`

	Sources []SourceRef `json:"sources" validate:"required,min=1,dive"`

	CreatedAt time.Time `json:"created_at" validate:"required"`
	UpdatedAt time.Time `json:"updated_at" validate:"required"`

	// DedupKey groups events believed to describe the same underlying
	// occurrence. Not part of the emitted JSON contract.
	DedupKey string `json:"-"`

	// EventTime is the earliest source timestamp seen for this signal.
	// Recency on merged signals is measured from here, not CreatedAt.
	EventTime time.Time `json:"-"`

	// Resolution is the ticker resolution confidence factor carried so
	// merges can rescore without re-resolving.
	Resolution float64 `json:"-"`

	// SentimentScore accumulates the reliability-weighted sentiment vote
	// across merged sources. Positive sums push positive, negative sums
	// push negative, zero resolves to neutral.
	SentimentScore float64 `json:"-"`
}

// HasSource reports whether a source with the given name is already attached
func (s *Signal) HasSource(name string) bool {
	for _, src := range s.Sources {
		if src.Name == name {
			return true
		}
	}
	return false
}

// DedupKey derives the deterministic grouping key for a candidate event.
// Events of the same type and ticker whose timestamps fall into the same
// merge-window bucket share a key.
func DedupKey(signalType SignalType, ticker string, eventTime time.Time, window time.Duration) string {
	bucket := eventTime.UTC().Unix() / int64(window.Seconds())
	return fmt.Sprintf("%s|%s|%d", signalType, ticker, bucket)
}

// SignalID derives the deterministic signal id for a dedup key. Identical
// input batches regenerate identical ids.
func SignalID(dedupKey string) string {
	sum := sha256.Sum256([]byte(dedupKey))
	return "sig_" + hex.EncodeToString(sum[:])[:16]
}
