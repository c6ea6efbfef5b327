package symbols

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadSectors reads the symbol-to-industry CSV used for sector tags.
// Expected columns are symbol and industry; when the header is missing
// the first two columns are taken as-is.
func LoadSectors(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open industry mapping %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse industry mapping %s: %w", path, err)
	}

	symbolCol, industryCol := 0, 1
	if len(records) > 0 {
		if i := headerIndex(records[0], symbolHeads); i >= 0 {
			symbolCol = i
			if j := headerIndex(records[0], []string{"industry", "industry_name", "sector"}); j >= 0 {
				industryCol = j
			}
			records = records[1:]
		}
	}

	mapping := make(map[string]string)
	for _, record := range records {
		symbol := strings.ToUpper(cell(record, symbolCol))
		industry := cell(record, industryCol)
		if symbol == "" || industry == "" {
			continue
		}
		mapping[symbol] = industry
	}

	fmt.Printf("[SYMBOLS] Loaded industry mapping for %d symbols\n", len(mapping))
	return mapping, nil
}

// SectorFor looks up a symbol's industry, defaulting to Unknown.
func SectorFor(sectors map[string]string, symbol string) string {
	if sector, ok := sectors[strings.ToUpper(symbol)]; ok {
		return sector
	}
	return "Unknown"
}
