package provider

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stockval/pkg/core/statement"
)

// ParseHTMLTable extracts the first <table> of an HTML document into a
// period table. The header row supplies the column labels and each body
// row is one period; a header cell named "period" routes that cell into
// the row's period field instead of the data cells.
//
// The vendor serves statements as HTML during maintenance windows, and
// operators occasionally feed saved exchange pages through this path.
func ParseHTMLTable(r io.Reader) (*statement.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	sel := doc.Find("table").First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("document contains no table")
	}

	table := &statement.Table{}
	periodCol := -1

	sel.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if i == 0 {
			cells.Each(func(j int, cell *goquery.Selection) {
				label := strings.TrimSpace(cell.Text())
				if periodCol == -1 && strings.EqualFold(label, "period") {
					periodCol = j
					return
				}
				table.Columns = append(table.Columns, statement.Key{Label: label})
			})
			return
		}

		var period string
		var values []any
		cells.Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if j == periodCol {
				period = text
				return
			}
			values = append(values, text)
		})
		table.AddRow(period, values...)
	})

	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("table has no header row")
	}
	return table, nil
}
