// Package dates normalizes and validates the date parameters shared by every
// analytical tool, and provides the safe-divide helper used for ratio metrics.
package dates

import (
	"fmt"
	"time"

	"github.com/bbeeken/PDIMCPServer/internal/errors"
	"github.com/bbeeken/PDIMCPServer/internal/logging"
)

// ISO is the canonical date layout used in SQL parameters and responses.
const ISO = "2006-01-02"

// acceptedLayouts lists the input formats tools accept, tried in order.
// The canonical form comes first so well-formed input parses on the first try.
var acceptedLayouts = []string{
	ISO,
	"01/02/2006", // MM/DD/YYYY
	"2006/01/02", // YYYY/MM/DD
	"02-01-2006", // DD-MM-YYYY
}

// MaxRangeDays is the span above which ValidateRange logs a warning.
// Large ranges are allowed; they just tend to be slow against the fact view.
const MaxRangeDays = 365

// Normalize converts a date string in any accepted format to YYYY-MM-DD.
func Normalize(value string) (string, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(ISO), nil
		}
	}
	return "", errors.New(errors.InvalidDate,
		fmt.Sprintf("invalid date format: %s (expected YYYY-MM-DD)", value))
}

// Parse returns the time.Time for a date string in any accepted format.
func Parse(value string) (time.Time, error) {
	normalized, err := Normalize(value)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(ISO, normalized)
	return t, nil
}

// ValidateRange normalizes both dates and checks start <= end. Spans over
// MaxRangeDays log a warning but do not fail.
func ValidateRange(start, end string, logger *logging.Logger) (string, string, error) {
	startISO, err := Normalize(start)
	if err != nil {
		return "", "", err
	}
	endISO, err := Normalize(end)
	if err != nil {
		return "", "", err
	}

	startT, _ := time.Parse(ISO, startISO)
	endT, _ := time.Parse(ISO, endISO)

	if startT.After(endT) {
		return "", "", errors.New(errors.InvalidDate,
			"start date must be before or equal to end date")
	}

	if days := int(endT.Sub(startT).Hours() / 24); days > MaxRangeDays && logger != nil {
		logger.Warn("large date range requested", map[string]interface{}{
			"days": days,
		})
	}

	return startISO, endISO, nil
}

// SafeDivide returns numerator/denominator, or def when the denominator is
// zero. Used for percent-change and ratio metrics.
func SafeDivide(numerator, denominator, def float64) float64 {
	if denominator == 0 {
		return def
	}
	return numerator / denominator
}

// DaysBetween enumerates every calendar day in [start, end], both ISO dates.
// The inputs must already be normalized.
func DaysBetween(start, end string) []string {
	startT, err := time.Parse(ISO, start)
	if err != nil {
		return nil
	}
	endT, err := time.Parse(ISO, end)
	if err != nil {
		return nil
	}

	var days []string
	for d := startT; !d.After(endT); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(ISO))
	}
	return days
}
