// Package calendar implements the business-day arithmetic used by the
// retroplanning and notification scheduling: weekends plus French public
// holidays count as non-working days.
package calendar

import (
	"regexp"
	"sync"
	"time"
)

// DateOnly pins the time component to local noon. Keeping milestone dates at
// noon makes a ±1 day walk immune to DST transitions shifting the calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// AtHour returns the same calendar day at hour:00 local.
func AtHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

var ymdPrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// ParseDay interprets anything starting with YYYY-MM-DD as that local calendar
// day at noon, ignoring any trailing time or zone suffix. Parsing ISO strings
// like 2024-03-12T00:00:00.000Z as UTC would shift the day in local time.
func ParseDay(raw string) (time.Time, bool) {
	m := ymdPrefix.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", m[0], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return DateOnly(t), true
}

// EasterSunday computes Easter for any Gregorian year with the
// Meeus/Jones/Butcher algorithm. Pure integer arithmetic, no table lookup.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	g := (8*b + 13) / 25
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31 // 3=March, 4=April
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local)
}

var (
	holidayMu    sync.RWMutex
	holidayCache = map[int]map[string]string{}
)

func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}

// frenchHolidays returns the holiday-name map for a year, memoized for the
// process lifetime. Safe for concurrent readers.
func frenchHolidays(year int) map[string]string {
	holidayMu.RLock()
	cached, ok := holidayCache[year]
	holidayMu.RUnlock()
	if ok {
		return cached
	}

	m := map[string]string{}
	fixed := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "Jour de l'an"},
		{time.May, 1, "Fête du Travail"},
		{time.May, 8, "Victoire 1945"},
		{time.July, 14, "Fête nationale"},
		{time.August, 15, "Assomption"},
		{time.November, 1, "Toussaint"},
		{time.November, 11, "Armistice 1918"},
		{time.December, 25, "Noël"},
	}
	for _, h := range fixed {
		m[ymd(time.Date(year, h.month, h.day, 12, 0, 0, 0, time.Local))] = h.name
	}

	easter := EasterSunday(year)
	m[ymd(easter.AddDate(0, 0, 1))] = "Lundi de Pâques"
	m[ymd(easter.AddDate(0, 0, 39))] = "Ascension"
	m[ymd(easter.AddDate(0, 0, 50))] = "Lundi de Pentecôte"

	holidayMu.Lock()
	holidayCache[year] = m
	holidayMu.Unlock()
	return m
}

// HolidayName returns the French public holiday falling on t, or "".
func HolidayName(t time.Time) string {
	return frenchHolidays(t.Year())[ymd(t)]
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func IsNonWorkingDay(t time.Time) bool {
	return isWeekend(t) || HolidayName(t) != ""
}

// AddBusinessDays walks forward day by day until n business days have been
// consumed. n<=0 returns the normalized input unchanged.
func AddBusinessDays(from time.Time, n int) time.Time {
	d := DateOnly(from)
	for remaining := n; remaining > 0; {
		d = DateOnly(d.AddDate(0, 0, 1))
		if IsNonWorkingDay(d) {
			continue
		}
		remaining--
	}
	return d
}

// SubBusinessDays is the symmetric backward walk.
func SubBusinessDays(from time.Time, n int) time.Time {
	d := DateOnly(from)
	for remaining := n; remaining > 0; {
		d = DateOnly(d.AddDate(0, 0, -1))
		if IsNonWorkingDay(d) {
			continue
		}
		remaining--
	}
	return d
}

// ToBusinessDayForward snaps a non-working day forward to the next working day.
func ToBusinessDayForward(from time.Time) time.Time {
	d := DateOnly(from)
	for IsNonWorkingDay(d) {
		d = DateOnly(d.AddDate(0, 0, 1))
	}
	return d
}

// SameDay compares at calendar-day granularity.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DaysBetween returns b-a in whole calendar days (noon-normalized).
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}
