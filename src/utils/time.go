package utils

import "time"

const daysPerYear = 365

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// YearsUntil counts whole calendar days from today to expiration and divides by 365.
func YearsUntil(expiration, today time.Time) float64 {
	from := StartOfDay(today)
	to := time.Date(expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, from.Location())

	days := to.Sub(from).Hours() / 24
	return float64(int(days+0.5)) / daysPerYear
}
