// Package interfaces defines the contracts between the signal engine and
// its collaborators. Collectors, extractors and external lookups are thin
// boundary services; the engine depends only on these interfaces.
package interfaces

import (
	"context"

	"github.com/ternarybob/medsignals/internal/models"
)

// Collector supplies pre-collected records for one source feed. Fetching
// and parsing raw documents happens outside the engine; a collector only
// hands over RawRecord-shaped data.
type Collector interface {
	// Source returns the feed name (e.g. "fda", "pubmed", "reddit")
	Source() string

	// Collect returns the ordered records of one batch run
	Collect(ctx context.Context) ([]models.RawRecord, error)
}

// Extractor is the swappable NLP strategy producing structured fields from
// raw text. The engine is agnostic to which implementation produced them.
type Extractor interface {
	// Extract fills in the extracted fields for a record whose collector
	// did not already provide them
	Extract(ctx context.Context, text string) (models.ExtractedFields, error)

	// Mode identifies the strategy ("regex", "claude", "gemini")
	Mode() string
}
