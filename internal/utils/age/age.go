package age

import "time"

// At returns the calendar-aware age at the given instant: birth year
// subtracted, minus one when the birthday has not yet occurred that year.
func At(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() ||
		(now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// Of is At relative to the current time.
func Of(dob time.Time) int {
	return At(dob, time.Now())
}
