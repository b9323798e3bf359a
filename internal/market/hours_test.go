package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(weekday time.Weekday, hour, min int) time.Time {
	// 2024-01-01 is a Monday.
	base := time.Date(2024, 1, 1, hour, min, 0, 0, time.Local)
	return base.AddDate(0, 0, int(weekday-time.Monday))
}

func TestIsOpen(t *testing.T) {
	cases := []struct {
		name    string
		weekday time.Weekday
		hour    int
		min     int
		open    bool
	}{
		{"monday mid-morning", time.Monday, 10, 0, true},
		{"monday lunch break", time.Monday, 12, 0, false},
		{"saturday morning", time.Saturday, 10, 0, false},
		{"sunday afternoon", time.Sunday, 14, 0, false},
		{"friday before close", time.Friday, 14, 59, true},
		{"friday after close", time.Friday, 15, 1, false},
		{"open boundary morning", time.Tuesday, 9, 30, true},
		{"just before morning open", time.Tuesday, 9, 29, false},
		{"close boundary morning", time.Wednesday, 11, 30, true},
		{"just after morning close", time.Wednesday, 11, 31, false},
		{"afternoon open boundary", time.Thursday, 13, 0, true},
		{"afternoon close boundary", time.Thursday, 15, 0, true},
		{"early morning", time.Monday, 8, 0, false},
		{"evening", time.Monday, 20, 30, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsOpen(at(tc.weekday, tc.hour, tc.min))
			assert.Equal(t, tc.open, got)
		})
	}
}
