package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestEasterSunday(t *testing.T) {
	assert.True(t, SameDay(day(2024, time.March, 31), EasterSunday(2024)))
	assert.True(t, SameDay(day(2025, time.April, 20), EasterSunday(2025)))
	assert.True(t, SameDay(day(2026, time.April, 5), EasterSunday(2026)))
}

func TestFrenchHolidays2024(t *testing.T) {
	holidays := []time.Time{
		day(2024, time.January, 1),
		day(2024, time.May, 1),
		day(2024, time.May, 8),
		day(2024, time.July, 14),
		day(2024, time.August, 15),
		day(2024, time.November, 1),
		day(2024, time.November, 11),
		day(2024, time.December, 25),
		day(2024, time.April, 1),  // Lundi de Pâques
		day(2024, time.May, 9),    // Ascension
		day(2024, time.May, 20),   // Lundi de Pentecôte
	}
	for _, h := range holidays {
		assert.True(t, IsNonWorkingDay(h), "expected %s to be non-working", h.Format("2006-01-02"))
	}

	// An ordinary Tuesday.
	assert.False(t, IsNonWorkingDay(day(2024, time.March, 12)))
}

func TestWeekends(t *testing.T) {
	assert.True(t, IsNonWorkingDay(day(2024, time.March, 9)))  // Saturday
	assert.True(t, IsNonWorkingDay(day(2024, time.March, 10))) // Sunday
	assert.False(t, IsNonWorkingDay(day(2024, time.March, 11)))
}

func TestAddBusinessDaysSkipsWeekend(t *testing.T) {
	// Friday + 1 business day = Monday.
	got := AddBusinessDays(day(2024, time.March, 8), 1)
	assert.True(t, SameDay(day(2024, time.March, 11), got))
}

func TestAddBusinessDaysSkipsHoliday(t *testing.T) {
	// Tuesday 2024-04-30 + 1 skips Wednesday May 1 (Fête du Travail).
	got := AddBusinessDays(day(2024, time.April, 30), 1)
	assert.True(t, SameDay(day(2024, time.May, 2), got))
}

func TestAddZeroNormalizes(t *testing.T) {
	in := time.Date(2024, time.March, 12, 23, 45, 0, 0, time.Local)
	got := AddBusinessDays(in, 0)
	assert.Equal(t, 12, got.Hour())
	assert.True(t, SameDay(in, got))
}

func TestRoundTrip(t *testing.T) {
	start := day(2024, time.March, 12)
	for n := 0; n <= 30; n++ {
		fwd := AddBusinessDays(start, n)
		back := SubBusinessDays(fwd, n)
		assert.True(t, SameDay(start, back), "n=%d fwd=%s back=%s", n, fwd, back)
	}
}

func TestToBusinessDayForward(t *testing.T) {
	// Saturday snaps to Monday.
	got := ToBusinessDayForward(day(2024, time.March, 9))
	assert.True(t, SameDay(day(2024, time.March, 11), got))

	// Easter Monday 2024 snaps to Tuesday.
	got = ToBusinessDayForward(day(2024, time.April, 1))
	assert.True(t, SameDay(day(2024, time.April, 2), got))

	// Working day stays put.
	got = ToBusinessDayForward(day(2024, time.March, 12))
	assert.True(t, SameDay(day(2024, time.March, 12), got))
}

func TestParseDay(t *testing.T) {
	for _, raw := range []string{
		"2024-03-12",
		"2024-03-12T00:00:00.000Z",
		"2024-03-12T23:59:59+02:00",
	} {
		got, ok := ParseDay(raw)
		assert.True(t, ok, raw)
		assert.True(t, SameDay(day(2024, time.March, 12), got), raw)
		assert.Equal(t, 12, got.Hour())
	}

	_, ok := ParseDay("12/03/2024")
	assert.False(t, ok)
	_, ok = ParseDay("")
	assert.False(t, ok)
}

func TestHolidayName(t *testing.T) {
	assert.Equal(t, "Noël", HolidayName(day(2024, time.December, 25)))
	assert.Equal(t, "Ascension", HolidayName(day(2024, time.May, 9)))
	assert.Equal(t, "", HolidayName(day(2024, time.March, 12)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day(2024, time.March, 12), day(2024, time.March, 12)))
	assert.Equal(t, 1, DaysBetween(day(2024, time.March, 12), day(2024, time.March, 13)))
	assert.Equal(t, -3, DaysBetween(day(2024, time.March, 12), day(2024, time.March, 9)))
}
