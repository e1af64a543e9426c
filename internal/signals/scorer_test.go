package signals

import (
	"math"
	"testing"
	"time"
)

func TestRecency_HalfLife(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		ageHours float64
		expected float64
	}{
		{"fresh event", 0, 1.0},
		{"one half-life", 24, 0.5},
		{"two half-lives", 48, 0.25},
		{"twelve hours", 12, math.Pow(0.5, 0.5)},
		{"future timestamp", -5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventTime := now.Add(-time.Duration(tt.ageHours * float64(time.Hour)))
			got := Recency(eventTime, now)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Recency(age %vh) = %v, want %v", tt.ageHours, got, tt.expected)
			}
		})
	}
}

func TestCorroborationBonus(t *testing.T) {
	tests := []struct {
		sources  int
		expected float64
	}{
		{1, 0},
		{2, 10},
		{3, 15},
		{4, 15},
		{10, 15},
	}

	for _, tt := range tests {
		if got := CorroborationBonus(tt.sources); got != tt.expected {
			t.Errorf("CorroborationBonus(%d) = %v, want %v", tt.sources, got, tt.expected)
		}
	}
}

func TestScore_FreshRegulatoryEvent(t *testing.T) {
	now := time.Now().UTC()

	// reliability 1.0, recency 1.0, resolution 1.0, single source
	if got := Score(1.0, 1.0, now, now, 1); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScore_DecaysWithAge(t *testing.T) {
	now := time.Now().UTC()
	dayOld := now.Add(-24 * time.Hour)

	// 1.0 * 0.5 * 1.0 * 100 = 50
	if got := Score(1.0, 1.0, dayOld, now, 1); got != 50 {
		t.Errorf("Score = %d, want 50", got)
	}
}

func TestScore_CorroborationRaisesConfidence(t *testing.T) {
	now := time.Now().UTC()
	eventTime := now.Add(-10 * time.Hour)

	single := Score(1.0, 1.0, eventTime, now, 1)
	corroborated := Score(1.0, 1.0, eventTime, now, 2)

	if corroborated <= single {
		t.Errorf("corroborated score %d not above single-source score %d", corroborated, single)
	}
}

func TestScore_AlwaysInBounds(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		reliability float64
		resolution  float64
		age         time.Duration
		sources     int
	}{
		{1.0, 1.0, 0, 10},
		{0.0, 0.0, 0, 1},
		{1.0, 1.0, 1000 * time.Hour, 1},
		{0.3, 0.5, 2 * time.Hour, 3},
	}

	for _, c := range cases {
		got := Score(c.reliability, c.resolution, now.Add(-c.age), now, c.sources)
		if got < 0 || got > 100 {
			t.Errorf("Score(%v, %v, age %v, %d sources) = %d, out of [0,100]",
				c.reliability, c.resolution, c.age, c.sources, got)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	now := time.Now().UTC()
	eventTime := now.Add(-7 * time.Hour)

	first := Score(0.9, 0.7, eventTime, now, 2)
	for i := 0; i < 100; i++ {
		if got := Score(0.9, 0.7, eventTime, now, 2); got != first {
			t.Fatalf("Score not deterministic: got %d then %d", first, got)
		}
	}
}
