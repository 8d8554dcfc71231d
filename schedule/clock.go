package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Meridiem is the AM/PM half of a 12-hour clock time.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// To24Hour converts a 12-hour "HH:MM" time and its meridiem to a
// zero-padded 24-hour "HH:MM:SS" string. Hour 12 is treated as 0, so
// "12:00" AM maps to "00:00:00" and "12:00" PM to "12:00:00". The
// mapping is total and injective over valid inputs.
func To24Hour(clock string, mer Meridiem) (string, error) {
	if mer != AM && mer != PM {
		return "", fmt.Errorf("invalid meridiem %q", mer)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid clock time %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 12 {
		return "", fmt.Errorf("invalid hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid minute in %q", clock)
	}
	h %= 12
	if mer == PM {
		h += 12
	}
	return fmt.Sprintf("%02d:%02d:00", h, m), nil
}

// From24Hour inverts To24Hour, recovering the displayed 12-hour time
// (hour 0 shown as 12) and meridiem from a 24-hour "HH:MM:SS" string.
func From24Hour(t string) (string, Meridiem, error) {
	parsed, err := time.Parse("15:04:05", t)
	if err != nil {
		return "", "", fmt.Errorf("invalid 24-hour time %q: %w", t, err)
	}
	h, m := parsed.Hour(), parsed.Minute()
	mer := AM
	if h >= 12 {
		mer = PM
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d", h, m), mer, nil
}

// WaitMinutes is the whole-minute delta from one 24-hour "HH:MM:SS"
// time to another, computed on a fixed reference date since only
// time-of-day matters. A departure before the arrival yields a
// negative wait.
func WaitMinutes(from, to string) (int, error) {
	f, err := time.Parse("15:04:05", from)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", from, err)
	}
	t, err := time.Parse("15:04:05", to)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", to, err)
	}
	return int(t.Sub(f).Minutes()), nil
}
