// Package statement models vendor financial statements as ordered period
// tables and resolves canonical metrics out of them.
package statement

// Key identifies one column of a statement table. Category is set when the
// source exposes two-level headers (category, label); flat tables leave it
// empty.
type Key struct {
	Category string `json:"category,omitempty"`
	Label    string `json:"label"`
}

// Row holds the cell values for one reporting period, parallel to the
// table's Columns. Cells arrive numeric or textual depending on the source.
type Row struct {
	Period string `json:"period,omitempty"`
	Cells  []any  `json:"cells"`
}

// Table is an ordered set of period rows sharing one column schema.
// Rows are ordered most-recent-first.
type Table struct {
	Name    string `json:"name,omitempty"`
	Columns []Key  `json:"columns"`
	Rows    []Row  `json:"rows"`
}

// AddRow appends a period row. Short rows are padded with nil cells so the
// row stays parallel to Columns.
func (t *Table) AddRow(period string, cells ...any) {
	for len(cells) < len(t.Columns) {
		cells = append(cells, nil)
	}
	t.Rows = append(t.Rows, Row{Period: period, Cells: cells})
}

// Empty reports whether the table has no usable rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// StatementName selects one table of a Bundle.
type StatementName string

const (
	Income     StatementName = "income"
	Balance    StatementName = "balance"
	CashFlow   StatementName = "cash_flow"
	Ratios     StatementName = "ratios"
	PriceBoard StatementName = "price_board"
)

// StatementNames lists the fetchable statements in request order.
var StatementNames = []StatementName{Income, Balance, CashFlow, Ratios, PriceBoard}

// Bundle carries the statements fetched for one symbol. Quarterly marks
// bundles whose rows are quarters rather than fiscal years.
type Bundle struct {
	Symbol     string `json:"symbol"`
	Quarterly  bool   `json:"quarterly"`
	Income     *Table `json:"income,omitempty"`
	Balance    *Table `json:"balance,omitempty"`
	CashFlow   *Table `json:"cash_flow,omitempty"`
	Ratios     *Table `json:"ratios,omitempty"`
	PriceBoard *Table `json:"price_board,omitempty"`
}

// Statement returns the named table, nil when absent.
func (b *Bundle) Statement(name StatementName) *Table {
	if b == nil {
		return nil
	}
	switch name {
	case Income:
		return b.Income
	case Balance:
		return b.Balance
	case CashFlow:
		return b.CashFlow
	case Ratios:
		return b.Ratios
	case PriceBoard:
		return b.PriceBoard
	}
	return nil
}

// SetStatement stores the named table on the bundle.
func (b *Bundle) SetStatement(name StatementName, t *Table) {
	switch name {
	case Income:
		b.Income = t
	case Balance:
		b.Balance = t
	case CashFlow:
		b.CashFlow = t
	case Ratios:
		b.Ratios = t
	case PriceBoard:
		b.PriceBoard = t
	}
}

// HasStatements reports whether at least one financial statement (price
// board excluded) carries data. A bundle without any cannot be valued.
func (b *Bundle) HasStatements() bool {
	if b == nil {
		return false
	}
	return !b.Income.Empty() || !b.Balance.Empty() || !b.CashFlow.Empty() || !b.Ratios.Empty()
}
