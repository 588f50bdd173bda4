// Package derive computes the fields that are not stored: ages, stock
// states, money totals, health scores. Everything here is a pure
// function of already-fetched values; callers apply them as an
// explicit post-fetch step, never as a side effect of reading.
package derive

import "time"

// Age in whole years, decremented when now's month/day precedes the
// birthday within the current year.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// YearsOfService counts 365.25-day years since hire. Not calendar
// arithmetic like Age: the two rules differ on leap boundaries and
// that difference is part of the contract.
func YearsOfService(hire, now time.Time) int {
	days := now.Sub(hire).Hours() / 24
	if days < 0 {
		return 0
	}
	return int(days / 365.25)
}
