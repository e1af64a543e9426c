// Package calendar implements the market-holiday collaborator used by
// signal validation. Holiday sets are computed per year and cached with a
// bounded TTL.
package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
)

// DefaultCacheTTL bounds how long a computed year set is reused
const DefaultCacheTTL = 24 * time.Hour

type yearEntry struct {
	holidays map[string]string // ISO date -> holiday name
	expires  time.Time
}

// Service reports NYSE/NASDAQ full-day market holidays. Implements
// interfaces.HolidayCalendar.
type Service struct {
	logger arbor.ILogger
	ttl    time.Duration

	mu    sync.Mutex
	years map[int]yearEntry

	now func() time.Time
}

// NewService creates a calendar Service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		ttl:    DefaultCacheTTL,
		years:  make(map[int]yearEntry),
		now:    time.Now,
	}
}

// IsMarketHoliday reports whether US equity markets are closed all day on
// the given date. Weekends are not holidays; callers interested in trading
// days should check the weekday separately.
func (s *Service) IsMarketHoliday(ctx context.Context, date time.Time) (bool, error) {
	day := date.UTC()
	holidays := s.holidaysFor(day.Year())

	name, ok := holidays[day.Format("2006-01-02")]
	if ok {
		s.logger.Debug().
			Str("date", day.Format("2006-01-02")).
			Str("holiday", name).
			Msg("Date is a market holiday")
	}
	return ok, nil
}

func (s *Service) holidaysFor(year int) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.years[year]
	if ok && s.now().Before(entry.expires) {
		return entry.holidays
	}

	holidays := marketHolidays(year)
	s.years[year] = yearEntry{holidays: holidays, expires: s.now().Add(s.ttl)}
	return holidays
}

// marketHolidays computes the NYSE full-day closures for a year
func marketHolidays(year int) map[string]string {
	holidays := make(map[string]string)
	add := func(d time.Time, name string) {
		holidays[d.Format("2006-01-02")] = name
	}

	add(observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)), "New Year's Day")
	add(nthWeekday(year, time.January, time.Monday, 3), "Martin Luther King Jr. Day")
	add(nthWeekday(year, time.February, time.Monday, 3), "Washington's Birthday")
	add(easterSunday(year).AddDate(0, 0, -2), "Good Friday")
	add(lastWeekday(year, time.May, time.Monday), "Memorial Day")
	add(observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)), "Juneteenth")
	add(observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)), "Independence Day")
	add(nthWeekday(year, time.September, time.Monday, 1), "Labor Day")
	add(nthWeekday(year, time.November, time.Thursday, 4), "Thanksgiving Day")
	add(observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)), "Christmas Day")

	return holidays
}

// observed shifts a fixed-date holiday falling on a weekend to the nearest
// weekday, per NYSE rules
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the nth given weekday of a month
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the last given weekday of a month
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// easterSunday computes Easter via the anonymous Gregorian algorithm
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
