// Package market decides whether a wall-clock instant falls inside a
// trading window.
package market

import "time"

// Trading windows in minutes since midnight, endpoints inclusive.
// 09:30-11:30 and 13:00-15:00 on weekdays. Holidays are not tracked:
// a refresh on a holiday wastes a few network calls but cannot corrupt
// state, because providers report no live session.
const (
	morningOpen    = 9*60 + 30
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
)

// IsOpen reports whether t is inside a trading window.
func IsOpen(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return (m >= morningOpen && m <= morningClose) ||
		(m >= afternoonOpen && m <= afternoonClose)
}
