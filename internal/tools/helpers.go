package tools

import "math"

// toFloat coerces a scanned SQL value to float64. Aggregates come back
// as int64 or float64 depending on the driver and the column math.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case nil:
		return 0
	default:
		return 0
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}

func likePattern(s string) string {
	return "%" + s + "%"
}
