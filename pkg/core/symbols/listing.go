// Package symbols maintains the tradable-symbol universe: the listing
// loaded from CSV, the sector mapping, and a bleve search index over both.
package symbols

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Company is one row of the exchange listing.
type Company struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Sector   string `json:"sector"`
}

// Listing is the loaded symbol universe with a membership set for
// validation.
type Listing struct {
	Companies []Company
	bySymbol  map[string]int
}

// Column headers vary by export; scan candidates in priority order.
var (
	symbolHeads   = []string{"symbol", "ticker"}
	nameHeads     = []string{"organ_short_name", "organ_name", "short_name", "company_name", "name"}
	exchangeHeads = []string{"exchange", "com_group_code", "comgroupcode", "type"}
	sectorHeads   = []string{"icb_name2", "icb_name3", "icb_name4", "industry", "industry_name", "sector"}
)

func headerIndex(header []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// NewListing wraps companies and builds the lookup set. Symbols are
// normalized to upper case.
func NewListing(companies []Company) *Listing {
	l := &Listing{Companies: companies, bySymbol: make(map[string]int)}
	for i := range l.Companies {
		l.Companies[i].Symbol = strings.ToUpper(l.Companies[i].Symbol)
		l.bySymbol[l.Companies[i].Symbol] = i
	}
	return l
}

// LoadListing reads the exchange listing CSV. The first row must be a
// header; column names are matched against known variants so exports from
// different sources load without reshaping.
func LoadListing(path string) (*Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", path, err)
	}
	if len(records) == 0 {
		return NewListing(nil), nil
	}

	header := records[0]
	symbolCol := headerIndex(header, symbolHeads)
	nameCol := headerIndex(header, nameHeads)
	exchangeCol := headerIndex(header, exchangeHeads)
	sectorCol := headerIndex(header, sectorHeads)
	if symbolCol < 0 {
		// Headerless export: take the conventional column order.
		symbolCol, nameCol, exchangeCol = 0, 1, 2
	} else {
		records = records[1:]
	}

	var companies []Company
	for _, record := range records {
		symbol := cell(record, symbolCol)
		if symbol == "" {
			continue
		}
		companies = append(companies, Company{
			Symbol:   symbol,
			Name:     cell(record, nameCol),
			Exchange: cell(record, exchangeCol),
			Sector:   cell(record, sectorCol),
		})
	}

	fmt.Printf("[SYMBOLS] Loaded %d symbols from %s\n", len(companies), path)
	return NewListing(companies), nil
}

// ApplySectors fills in missing sector names from the industry mapping.
func (l *Listing) ApplySectors(sectors map[string]string) {
	for i := range l.Companies {
		if l.Companies[i].Sector == "" {
			l.Companies[i].Sector = SectorFor(sectors, l.Companies[i].Symbol)
		}
	}
}

// Get returns the listed company for a symbol, or nil when unknown.
func (l *Listing) Get(symbol string) *Company {
	if l == nil {
		return nil
	}
	if i, ok := l.bySymbol[strings.ToUpper(symbol)]; ok {
		c := l.Companies[i]
		return &c
	}
	return nil
}

// Validate reports whether a symbol is listed. An empty universe cannot
// reject anything, so validation passes with a warning rather than
// blocking every request.
func (l *Listing) Validate(symbol string) bool {
	if l == nil || len(l.bySymbol) == 0 {
		fmt.Printf("[SYMBOLS] Cannot validate %s, symbol list unavailable\n", symbol)
		return true
	}
	_, ok := l.bySymbol[strings.ToUpper(symbol)]
	return ok
}

// Len returns the number of listed companies.
func (l *Listing) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Companies)
}
