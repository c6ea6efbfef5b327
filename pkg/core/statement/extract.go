package statement

// FieldSpec binds one canonical metric to its source statement, its
// aggregation mode and the ordered candidate labels it may appear under.
// Earlier candidates are the most authoritative spellings.
type FieldSpec struct {
	Metric     string        `json:"metric"`
	Statement  StatementName `json:"statement"`
	Mode       Mode          `json:"mode"`
	Candidates []Key         `json:"candidates"`
}

// Extract resolves every field spec against the bundle and returns the
// primitives keyed by canonical metric name. Metrics that resolve nowhere
// are simply absent from the result; callers must not read absence as zero.
//
// Flow quantities are summed over the trailing four quarters, balance-sheet
// quantities are taken point-in-time. On annual bundles trailing-sum specs
// degrade to latest, since a yearly row already spans twelve months.
func Extract(b *Bundle, specs []FieldSpec) map[string]*float64 {
	primitives := make(map[string]*float64, len(specs))
	if b == nil {
		return primitives
	}
	for _, spec := range specs {
		// First resolved spec per metric wins, so specs reading the
		// primary statements outrank ratio-table copies listed later.
		if _, done := primitives[spec.Metric]; done {
			continue
		}
		table := b.Statement(spec.Statement)
		if table.Empty() {
			continue
		}
		mode := spec.Mode
		if mode == TrailingSum && !b.Quarterly {
			mode = Latest
		}
		if v := Resolve(table, spec.Candidates, mode); v != nil {
			primitives[spec.Metric] = v
		}
	}
	return primitives
}
