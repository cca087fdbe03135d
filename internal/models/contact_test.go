package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysToNextBirthday(t *testing.T) {
	now := date(2024, time.June, 1)

	tests := []struct {
		name     string
		birthday time.Time
		want     int
	}{
		{"today", date(1990, time.June, 1), 0},
		{"tomorrow", date(1990, time.June, 2), 1},
		{"in a week", date(1814, time.March, 9).AddDate(0, 2, 23), 0}, // 1814-06-01
		{"later this year", date(1991, time.December, 31), 213},
		{"already passed", date(1985, time.May, 31), 364},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Contact{Birthday: tt.birthday}
			if got := c.DaysToNextBirthday(now); got != tt.want {
				t.Errorf("DaysToNextBirthday = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysToNextBirthdayRange(t *testing.T) {
	now := time.Now()
	c := Contact{Birthday: date(1814, time.March, 9)}
	got := c.DaysToNextBirthday(now)
	if got < 0 || got > 365 {
		t.Fatalf("DaysToNextBirthday = %d, want within [0,365]", got)
	}
}
