package signals

import (
	"strings"

	"github.com/ternarybob/medsignals/internal/models"
)

// sourceWeight pairs a source substring with its trust score
type sourceWeight struct {
	Match string
	Score float64
}

// sourceReliability is the static trust score per source, ordered from most
// to least trusted so a source matching two entries resolves to the higher
// one. Matching is by substring so "www.fda.gov/news/..." resolves the same
// as "fda.gov".
var sourceReliability = []sourceWeight{
	// Government / regulatory
	{"fda.gov", 1.0},
	{"nih.gov", 0.95},
	{"cdc.gov", 0.95},

	// Peer-reviewed literature
	{"pubmed.ncbi.nlm.nih.gov", 0.95},
	{"nejm.org", 0.95},
	{"thelancet.com", 0.95},
	{"nature.com", 0.9},
	{"jama.org", 0.9},

	// Financial news and filings
	{"reuters.com", 0.9},
	{"bloomberg.com", 0.85},
	{"wsj.com", 0.85},
	{"sec.gov", 0.8},
	{"marketwatch.com", 0.75},

	// General news
	{"cnn.com", 0.7},
	{"bbc.com", 0.7},
	{"nytimes.com", 0.7},

	// Social / community
	{"reddit.com", 0.4},
	{"twitter.com", 0.3},
	{"x.com", 0.3},
	{"stocktwits.com", 0.25},
}

// defaultReliability applies to sources not in the table
const defaultReliability = 0.5

// SourceReliability returns the static reliability weight for a source name
// or URL
func SourceReliability(source string) float64 {
	lower := strings.ToLower(source)
	for _, entry := range sourceReliability {
		if strings.Contains(lower, entry.Match) {
			return entry.Score
		}
	}
	return defaultReliability
}

// typeHints maps source-specific vocabulary to the shared signal type enum
var typeHints = map[string]models.SignalType{
	// FDA vocabulary
	"fda_approval":      models.SignalFDAApproval,
	"approval":          models.SignalFDAApproval,
	"nda_approval":      models.SignalFDAApproval,
	"bla_approval":      models.SignalFDAApproval,
	"fda_rejection":     models.SignalFDARejection,
	"rejection":         models.SignalFDARejection,
	"complete_response": models.SignalFDARejection,
	"crl":               models.SignalFDARejection,
	"fda_warning":       models.SignalFDAWarning,
	"warning_letter":    models.SignalFDAWarning,

	// Trial vocabulary (PubMed, press releases)
	"trial_success":    models.SignalTrialSuccess,
	"endpoint_met":     models.SignalTrialSuccess,
	"trial_failure":    models.SignalTrialFailure,
	"endpoint_missed":  models.SignalTrialFailure,
	"phase_advance":    models.SignalTrialAdvance,
	"trial_initiation": models.SignalTrialAdvance,

	// SEC vocabulary
	"sec_filing": models.SignalSECFiling,
	"filing":     models.SignalSECFiling,
	"8-k":        models.SignalSECFiling,
	"10-k":       models.SignalSECFiling,
	"10-q":       models.SignalSECFiling,
	"s-1":        models.SignalSECFiling,

	// Social vocabulary
	"reddit_sentiment": models.SignalRedditSentiment,
	"sentiment":        models.SignalRedditSentiment,
	"dd":               models.SignalRedditSentiment,
	"discussion":       models.SignalRedditSentiment,
}

// MapTypeHint resolves a collector's declared type hint to the shared enum.
// Enum values themselves are accepted as hints.
func MapTypeHint(hint string) (models.SignalType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(hint))
	if t, ok := typeHints[normalized]; ok {
		return t, true
	}
	// Accept canonical enum values directly
	direct := models.SignalType(strings.ToUpper(normalized))
	if direct.Valid() {
		return direct, true
	}
	return "", false
}

// defaultSentiment is the direction implied by each signal type
var defaultSentiment = map[models.SignalType]models.Sentiment{
	models.SignalFDAApproval:     models.SentimentPositive,
	models.SignalFDARejection:    models.SentimentNegative,
	models.SignalFDAWarning:      models.SentimentNegative,
	models.SignalTrialSuccess:    models.SentimentPositive,
	models.SignalTrialFailure:    models.SentimentNegative,
	models.SignalTrialAdvance:    models.SentimentPositive,
	models.SignalSECFiling:       models.SentimentNeutral,
	models.SignalRedditSentiment: models.SentimentNeutral,
}

// baseTarget holds the documented typical price move for a signal type
type baseTarget struct {
	UpsidePct   float64
	DownsidePct float64
}

// baseTargets come from historical averages of comparable events
var baseTargets = map[models.SignalType]baseTarget{
	models.SignalFDAApproval:     {UpsidePct: 15.2, DownsidePct: -5.0},
	models.SignalFDARejection:    {UpsidePct: -20.0, DownsidePct: -30.0},
	models.SignalFDAWarning:      {UpsidePct: -8.0, DownsidePct: -15.0},
	models.SignalTrialSuccess:    {UpsidePct: 12.0, DownsidePct: -3.0},
	models.SignalTrialFailure:    {UpsidePct: -15.0, DownsidePct: -25.0},
	models.SignalTrialAdvance:    {UpsidePct: 8.0, DownsidePct: -2.0},
	models.SignalSECFiling:       {UpsidePct: 4.0, DownsidePct: -4.0},
	models.SignalRedditSentiment: {UpsidePct: 5.0, DownsidePct: -5.0},
}

// isClinicalType reports whether a type requires drug/company fields
func isClinicalType(t models.SignalType) bool {
	switch t {
	case models.SignalFDAApproval, models.SignalFDARejection, models.SignalFDAWarning,
		models.SignalTrialSuccess, models.SignalTrialFailure, models.SignalTrialAdvance:
		return true
	}
	return false
}
