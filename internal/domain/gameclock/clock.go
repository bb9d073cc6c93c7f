// Package gameclock converts the period and clock strings in play-by-play
// feeds into comparable numbers.
package gameclock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	RegulationPeriods = 4
	PeriodSeconds     = 12 * 60
	// OvertimeSeconds is the length assumed for every overtime period.
	OvertimeSeconds = 5 * 60
)

// ErrBadClock is returned for clock strings in no known format.
var ErrBadClock = errors.New("unrecognised game clock")

var (
	isoClock   = regexp.MustCompile(`^PT(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?$`)
	colonClock = regexp.MustCompile(`^(?:PT)?(\d+):(\d+(?:\.\d+)?)$`)
)

// Parse splits a clock into whole minutes and seconds. It accepts
// "PT11:42.00", "PT05M30.50S" and "11:42". The empty clock is zero.
func Parse(clock string) (minutes int, seconds float64, err error) {
	c := strings.TrimSpace(clock)
	if c == "" {
		return 0, 0, nil
	}

	var mm, ss string
	if m := colonClock.FindStringSubmatch(c); m != nil {
		mm, ss = m[1], m[2]
	} else if m := isoClock.FindStringSubmatch(c); m != nil && c != "PT" {
		mm, ss = m[1], m[2]
	} else {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
	}

	if mm != "" {
		if minutes, err = strconv.Atoi(mm); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
		}
	}
	if ss != "" {
		if seconds, err = strconv.ParseFloat(ss, 64); err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, clock)
		}
	}
	return minutes, seconds, nil
}

// Remaining is the clock in seconds left in the period.
func Remaining(clock string) (float64, error) {
	m, s, err := Parse(clock)
	if err != nil {
		return 0, err
	}
	return float64(m*60) + s, nil
}

// TimeSeconds maps (period, clock) onto a single axis that counts down to the
// end of regulation. Regulation gives (4-period)*720 plus the time left.
// Overtime periods go negative in 300 second steps.
func TimeSeconds(period int, clock string) (float64, error) {
	left, err := Remaining(clock)
	if err != nil {
		return 0, err
	}
	if period <= RegulationPeriods {
		return float64((RegulationPeriods-period)*PeriodSeconds) + left, nil
	}
	return float64(-(period-RegulationPeriods)*OvertimeSeconds) + left, nil
}

// Display renders a clock as "m:ss", e.g. "PT05M09.00S" -> "5:09".
func Display(clock string) string {
	m, s, err := Parse(clock)
	if err != nil {
		return clock
	}
	return fmt.Sprintf("%d:%02d", m, int(s))
}

// PeriodLabel returns Q1..Q4, then OT1, OT2...
func PeriodLabel(period int) string {
	if period <= 0 {
		return ""
	}
	if period <= RegulationPeriods {
		return fmt.Sprintf("Q%d", period)
	}
	return fmt.Sprintf("OT%d", period-RegulationPeriods)
}
