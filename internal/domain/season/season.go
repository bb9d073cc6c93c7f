// Package season names NBA seasons the way the stats API expects them.
package season

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrBadSeason is returned for labels not shaped like "2024-25".
var ErrBadSeason = errors.New("invalid season label")

var labelRE = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Label formats the season starting in startYear, e.g. 2024 -> "2024-25".
func Label(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// Current returns the season in progress at now. Seasons roll over in October.
func Current(now time.Time) string {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	return Label(year)
}

// Resolve returns label when set and the current season otherwise.
func Resolve(label string, now time.Time) (string, error) {
	if label == "" {
		return Current(now), nil
	}
	if _, err := StartYear(label); err != nil {
		return "", err
	}
	return label, nil
}

// StartYear parses the first year of a label.
func StartYear(label string) (int, error) {
	m := labelRE.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrBadSeason, label)
	}
	year, _ := strconv.Atoi(m[1])
	if end, _ := strconv.Atoi(m[2]); end != (year+1)%100 {
		return 0, fmt.Errorf("%w: %q", ErrBadSeason, label)
	}
	return year, nil
}
