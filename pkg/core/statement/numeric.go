package statement

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	dateSlashRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	numberRe    = regexp.MustCompile(`[\d.]+`)
)

var monthNames = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Coerce extracts a numeric value from a raw table cell. Missing markers,
// dates and unparsable strings yield nil rather than zero, so absence stays
// distinguishable from a true zero.
func Coerce(cell any) *float64 {
	switch v := cell.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	case float32:
		f := float64(v)
		return Coerce(f)
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		return parseNumericString(v.String())
	case string:
		return parseNumericString(v)
	}
	return nil
}

// parseNumericString parses a formatted statement cell ("1,234.5", "(500)",
// "$12") into a number. Placeholder and date-like cells return nil.
func parseNumericString(s string) *float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "-" || trimmed == "--" || trimmed == "—" {
		return nil
	}
	upper := strings.ToUpper(trimmed)
	if upper == "N/A" || upper == "NA" || upper == "NAN" {
		return nil
	}

	// Cells like "Sep. 28, 2024" or "12/31/2023" are period headers that
	// leaked into a value column.
	lower := strings.ToLower(trimmed)
	for _, month := range monthNames {
		if strings.Contains(lower, month) {
			return nil
		}
	}
	if dateSlashRe.MatchString(trimmed) {
		return nil
	}

	cleaned := strings.ReplaceAll(trimmed, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// Accountants write negatives in parentheses.
	isNegative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		isNegative = true
		cleaned = strings.Trim(cleaned, "()")
	} else if strings.HasPrefix(cleaned, "-") {
		isNegative = true
		cleaned = strings.TrimPrefix(cleaned, "-")
	}

	match := numberRe.FindString(cleaned)
	if match == "" {
		return nil
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	if isNegative {
		val = -val
	}
	return &val
}
