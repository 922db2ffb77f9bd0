package service

import (
	"time"

	"github.com/recordbook/recordbook/internal/records"
)

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// anniversary returns born's month/day in year, in loc. Feb 29 falls on
// Mar 1 when year is not a leap year.
func anniversary(born records.Date, year int, loc *time.Location) time.Time {
	m, d := born.Month(), born.Day()
	if m == time.February && d == 29 && !isLeap(year) {
		m, d = time.March, 1
	}
	return time.Date(year, m, d, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// NextBirthday returns the first anniversary of born on or after today.
func NextBirthday(born records.Date, today time.Time) time.Time {
	today = day(today)
	next := anniversary(born, today.Year(), today.Location())
	if next.Before(today) {
		next = anniversary(born, today.Year()+1, today.Location())
	}
	return next
}

// BirthdayWithin reports whether the next birthday lies in
// [today, today+days] inclusive.
func BirthdayWithin(born records.Date, today time.Time, days int) bool {
	today = day(today)
	next := NextBirthday(born, today)
	return !next.After(today.AddDate(0, 0, days))
}
