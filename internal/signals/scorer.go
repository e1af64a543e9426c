package signals

import "time"

// Scoring constants
const (
	// recencyHalfLifeHours halves an event's confidence contribution
	// every 24 hours of age
	recencyHalfLifeHours = 24.0

	// maxCorroborationBonus caps the total bonus from extra sources
	maxCorroborationBonus = 20.0
)

// Recency returns the exponential age decay factor for an event scored at
// the given time. Age 0 yields 1.0, age 24h yields exactly 0.5. Events
// timestamped in the future decay nothing.
func Recency(eventTime, at time.Time) float64 {
	ageHours := at.Sub(eventTime).Hours()
	if ageHours <= 0 {
		return 1.0
	}
	return halfLifeDecay(ageHours, recencyHalfLifeHours)
}

// CorroborationBonus returns the diminishing confidence bonus for extra
// distinct sources: +10 for the second, +5 for the third, nothing after.
func CorroborationBonus(sourceCount int) float64 {
	bonus := 0.0
	if sourceCount >= 2 {
		bonus += 10
	}
	if sourceCount >= 3 {
		bonus += 5
	}
	return clamp(bonus, 0, maxCorroborationBonus)
}

// Score combines source reliability, recency decay, resolution confidence
// and the corroboration bonus into the final 0-100 integer confidence.
// Deterministic and side-effect-free; identical inputs always produce
// identical output.
func Score(reliability, resolutionConfidence float64, eventTime, at time.Time, sourceCount int) int {
	raw := reliability * Recency(eventTime, at) * resolutionConfidence * 100
	final := clamp(raw+CorroborationBonus(sourceCount), 0, 100)
	return roundInt(final)
}
