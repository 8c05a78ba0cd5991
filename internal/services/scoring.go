package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CalculateScore averages the numeric values of a response map
// #BUSINESS_RULE: Non-numeric answers are excluded from both sum and count
// #BUSINESS_RULE: No numeric answers yields 0, never an error
// #IMPLEMENTATION_DECISION: Every numeric answer counts equally, question ranges are not weighted
func CalculateScore(responses map[string]interface{}) float64 {
	var sum float64
	var count int
	for _, value := range responses {
		if n, ok := numericValue(value); ok {
			sum += n
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return roundScore(sum / float64(count))
}

// numericValue extracts a finite number from a decoded response value
// Numeric strings such as "7.5" count, booleans and free text do not.
func numericValue(value interface{}) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, ok := parseNumericString(v)
		if !ok {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// parseNumericString accepts plain decimal notation only
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// roundScore keeps two decimals, matching the stored precision
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
