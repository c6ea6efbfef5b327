package statement

import "strings"

// Mode selects how Resolve aggregates across periods.
type Mode string

const (
	// Latest takes the most recent period's value.
	Latest Mode = "latest"
	// TrailingSum sums the four most recent periods to approximate a
	// trailing-twelve-month figure.
	TrailingSum Mode = "trailing_sum"
)

// trailingWindow is the number of periods a TTM approximation requires.
const trailingWindow = 4

// Resolve returns the first candidate's usable numeric value from the
// table. Candidates are tried in priority order; label matching is
// case-insensitive and accepts containment in either direction, so
// "Net income" finds "Net Income (Bn. VND)" and vice versa.
//
// With TrailingSum fewer than four rows resolves to nil, never a partial
// sum: a partial window would silently understate an annualized figure.
// Absence is nil, not zero. Zero is a legitimate financial value.
func Resolve(t *Table, candidates []Key, mode Mode) *float64 {
	if t.Empty() || len(candidates) == 0 {
		return nil
	}
	if mode == TrailingSum {
		return resolveTrailing(t, candidates)
	}
	return resolveLatest(t, candidates)
}

func resolveLatest(t *Table, candidates []Key) *float64 {
	for _, cand := range candidates {
		if v := rowValue(t, &t.Rows[0], cand); v != nil {
			return v
		}
	}
	return nil
}

// resolveTrailing sums the trailing window using the first candidate that
// matches in each row independently. Vendors drift labels between periods,
// so one quarter may expose a quantity under a different equivalent label
// than the next.
func resolveTrailing(t *Table, candidates []Key) *float64 {
	if len(t.Rows) < trailingWindow {
		return nil
	}
	total := 0.0
	matched := false
	for i := 0; i < trailingWindow; i++ {
		for _, cand := range candidates {
			if v := rowValue(t, &t.Rows[i], cand); v != nil {
				total += *v
				matched = true
				break
			}
		}
	}
	if !matched {
		return nil
	}
	return &total
}

// RowValue resolves candidates against the single row at index, for
// callers walking a table period by period.
func RowValue(t *Table, index int, candidates []Key) *float64 {
	if t.Empty() || index < 0 || index >= len(t.Rows) {
		return nil
	}
	for _, cand := range candidates {
		if v := rowValue(t, &t.Rows[index], cand); v != nil {
			return v
		}
	}
	return nil
}

// rowValue scans columns in schema order and returns the first cell that
// matches the candidate and coerces to a number. Unparsable cells do not
// stop the scan.
func rowValue(t *Table, row *Row, cand Key) *float64 {
	for i := range t.Columns {
		if !matchKey(t.Columns[i], cand) {
			continue
		}
		if i >= len(row.Cells) {
			continue
		}
		if v := Coerce(row.Cells[i]); v != nil {
			return v
		}
	}
	return nil
}

// matchKey reports whether a column satisfies a candidate. A candidate
// carrying a category only matches columns filed under that category.
func matchKey(col, cand Key) bool {
	if cand.Category != "" && !matchLabel(col.Category, cand.Category) {
		return false
	}
	return matchLabel(col.Label, cand.Label)
}

func matchLabel(label, pattern string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if label == "" || pattern == "" {
		return label == pattern
	}
	if label == pattern {
		return true
	}
	return strings.Contains(label, pattern) || strings.Contains(pattern, label)
}
