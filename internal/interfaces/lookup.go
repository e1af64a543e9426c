package interfaces

import (
	"context"
	"time"
)

// EntityMatch is the result of an external entity lookup
type EntityMatch struct {
	Ticker   string
	Company  string
	Exchange string
	// MatchConfidence is the collaborator's own confidence in the match, 0-1
	MatchConfidence float64
}

// EntityLookup is the external structured-knowledge collaborator used as
// the third ticker resolution tier. Implementations must honor the context
// deadline; the resolver applies its own retry and backoff policy.
type EntityLookup interface {
	// LookupTicker resolves a company name to a ticker. Returns
	// (nil, nil) when the collaborator has no match.
	LookupTicker(ctx context.Context, company string) (*EntityMatch, error)
}

// HolidayCalendar is the external calendar collaborator used by signal
// validation. Results are cached with a bounded TTL by the implementation.
type HolidayCalendar interface {
	// IsMarketHoliday reports whether the exchange is closed on the
	// given date
	IsMarketHoliday(ctx context.Context, date time.Time) (bool, error)
}
