package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a time of day in minutes since midnight. 24:00 is valid as an end time.
type Clock int

const endOfDay Clock = 24 * 60

// ParseClock accepts "H:MM" or "HH:MM" between 00:00 and 24:00.
func ParseClock(s string) (Clock, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	c := Clock(hour*60 + minute)
	if hour < 0 || minute < 0 || minute > 59 || c > endOfDay {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return c, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Add returns c shifted by whole hours and whether the result stays within the same day.
func (c Clock) Add(hours int) (Clock, bool) {
	end := c + Clock(hours*60)
	return end, end <= endOfDay
}
