package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var dateLayout = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// IsValidDate reports whether s is a date in MM/DD/YYYY form with the month
// in 01-12 and the day in 01-31. Day ranges are not cross-checked against the
// month length or leap years.
func IsValidDate(s string) bool {
	parts := dateLayout.FindStringSubmatch(strings.TrimSpace(s))
	if parts == nil {
		return false
	}

	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// IsValidNumber reports whether s, after trimming, parses as a finite number.
func IsValidNumber(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return false
	}

	return !math.IsInf(value, 0) && !math.IsNaN(value)
}
