package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/medsignals/internal/common"
)

func TestService_KnownHolidays(t *testing.T) {
	s := NewService(common.GetLogger())
	ctx := context.Background()

	tests := []struct {
		date    string
		holiday bool
	}{
		{"2026-01-01", true},  // New Year's Day
		{"2026-01-19", true},  // MLK Day, third Monday of January
		{"2026-04-03", true},  // Good Friday
		{"2026-05-25", true},  // Memorial Day, last Monday of May
		{"2026-06-19", true},  // Juneteenth
		{"2026-07-03", true},  // Independence Day observed (July 4 is a Saturday)
		{"2026-09-07", true},  // Labor Day
		{"2026-11-26", true},  // Thanksgiving, fourth Thursday of November
		{"2026-12-25", true},  // Christmas
		{"2026-08-28", false}, // Regular trading day
		{"2026-07-04", false}, // The Saturday itself is not the observed date
	}

	for _, tt := range tests {
		date, err := time.Parse("2006-01-02", tt.date)
		require.NoError(t, err)

		got, err := s.IsMarketHoliday(ctx, date)
		require.NoError(t, err)
		assert.Equal(t, tt.holiday, got, "date %s", tt.date)
	}
}

func TestService_CachesYearSets(t *testing.T) {
	s := NewService(common.GetLogger())

	first := s.holidaysFor(2026)
	second := s.holidaysFor(2026)

	// Same cached map instance until the TTL lapses
	assert.Equal(t, len(first), len(second))
	if len(s.years) != 1 {
		t.Errorf("cached %d year entries, want 1", len(s.years))
	}
}

func TestEasterSunday(t *testing.T) {
	tests := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
	}
	for year, expected := range tests {
		assert.Equal(t, expected, easterSunday(year).Format("2006-01-02"), "year %d", year)
	}
}
