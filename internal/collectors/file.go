// Package collectors supplies pre-collected source feeds to the engine.
// Fetching and parsing raw documents happens outside this system; a feed
// file is a JSON array of records already shaped for the pipeline.
package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medsignals/internal/interfaces"
	"github.com/ternarybob/medsignals/internal/models"
)

// FileCollector reads one source's feed file from the feed directory
type FileCollector struct {
	source string
	path   string
	logger arbor.ILogger
}

// NewFileCollector creates a collector for {feedDir}/{source}.json
func NewFileCollector(feedDir, source string, logger arbor.ILogger) *FileCollector {
	return &FileCollector{
		source: source,
		path:   filepath.Join(feedDir, source+".json"),
		logger: logger,
	}
}

// Source returns the feed name
func (c *FileCollector) Source() string { return c.source }

// Collect reads and decodes the feed file
func (c *FileCollector) Collect(ctx context.Context) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file %s: %w", c.path, err)
	}

	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed feed file %s: %w", c.path, err)
	}

	// Records missing a source attribution inherit the feed name
	for i := range records {
		if records[i].Source == "" {
			records[i].Source = c.source
		}
	}

	c.logger.Debug().
		Str("source", c.source).
		Int("records", len(records)).
		Msg("Collected feed records")
	return records, nil
}

// Discover lists the collectors for a feed directory, optionally filtered
// to the named sources. Every *.json file is one source feed.
func Discover(feedDir string, sources []string, logger arbor.ILogger) ([]interfaces.Collector, error) {
	entries, err := os.ReadDir(feedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed directory %s: %w", feedDir, err)
	}

	wanted := make(map[string]bool, len(sources))
	for _, source := range sources {
		wanted[strings.ToLower(source)] = true
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if len(wanted) > 0 && !wanted[strings.ToLower(name)] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	collectors := make([]interfaces.Collector, 0, len(names))
	for _, name := range names {
		collectors = append(collectors, NewFileCollector(feedDir, name, logger))
	}
	return collectors, nil
}
