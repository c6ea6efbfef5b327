package symbols

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index is the full-text search index over the listing.
type Index struct {
	index bleve.Index
}

// OpenIndex opens the search index at path, building and populating it
// when it does not exist yet. An existing index is reused as-is; delete
// the directory to force a rebuild after the listing changes.
func OpenIndex(path string, listing *Listing) (*Index, error) {
	index, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create symbol index: %w", err)
		}

		fmt.Printf("[SYMBOLS] Indexing %d symbols...\n", listing.Len())
		batch := index.NewBatch()
		for _, company := range listing.Companies {
			if err := batch.Index(company.Symbol, company); err != nil {
				return nil, fmt.Errorf("failed to add %s to batch: %w", company.Symbol, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return nil, fmt.Errorf("failed to execute index batch: %w", err)
		}
		fmt.Println("[SYMBOLS] Indexing complete")
	} else if err != nil {
		return nil, fmt.Errorf("failed to open symbol index: %w", err)
	} else {
		fmt.Println("[SYMBOLS] Opened existing symbol index")
	}

	return &Index{index: index}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	companyMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Store = true
	textFieldMapping.Index = true
	companyMapping.AddFieldMappingsAt("name", textFieldMapping)
	companyMapping.AddFieldMappingsAt("sector", textFieldMapping)

	indexMapping.AddDocumentMapping("_default", companyMapping)
	return indexMapping
}

// Search runs a boosted disjunction over symbol and name so exact ticker
// hits rank first, ticker prefixes next, then name and sector matches.
func (x *Index) Search(query string, limit int) []Company {
	if limit <= 0 {
		limit = 20
	}
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return nil
	}

	// Exact symbol match ranks highest.
	exactQuery := bleve.NewTermQuery(lowered)
	exactQuery.SetField("symbol")
	exactQuery.SetBoost(10.0)

	prefixQuery := bleve.NewPrefixQuery(lowered)
	prefixQuery.SetField("symbol")
	prefixQuery.SetBoost(5.0)

	nameMatchQuery := bleve.NewMatchQuery(query)
	nameMatchQuery.SetField("name")
	nameMatchQuery.SetBoost(3.0)

	wildcardSymbol := bleve.NewWildcardQuery("*" + lowered + "*")
	wildcardSymbol.SetField("symbol")
	wildcardSymbol.SetBoost(2.0)

	wildcardName := bleve.NewWildcardQuery("*" + lowered + "*")
	wildcardName.SetField("name")
	wildcardName.SetBoost(1.5)

	wildcardSector := bleve.NewWildcardQuery("*" + lowered + "*")
	wildcardSector.SetField("sector")
	wildcardSector.SetBoost(1.0)

	searchQuery := bleve.NewDisjunctionQuery(
		exactQuery,
		prefixQuery,
		nameMatchQuery,
		wildcardSymbol,
		wildcardName,
		wildcardSector,
	)

	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Fields = []string{"symbol", "name", "exchange", "sector"}
	searchRequest.Size = limit

	searchResults, err := x.index.Search(searchRequest)
	if err != nil {
		fmt.Printf("[SYMBOLS] Search error for %q: %v\n", query, err)
		return nil
	}

	var results []Company
	for _, hit := range searchResults.Hits {
		results = append(results, companyFromFields(hit.Fields))
	}
	return results
}

// Lookup returns the indexed company for an exact symbol, or nil.
func (x *Index) Lookup(symbol string) *Company {
	termQuery := bleve.NewTermQuery(strings.ToLower(symbol))
	termQuery.SetField("symbol")

	searchRequest := bleve.NewSearchRequest(termQuery)
	searchRequest.Fields = []string{"symbol", "name", "exchange", "sector"}
	searchRequest.Size = 1

	searchResults, err := x.index.Search(searchRequest)
	if err != nil || len(searchResults.Hits) == 0 {
		return nil
	}
	company := companyFromFields(searchResults.Hits[0].Fields)
	return &company
}

func companyFromFields(fields map[string]interface{}) Company {
	getString := func(key string) string {
		if val, ok := fields[key].(string); ok {
			return val
		}
		return ""
	}
	return Company{
		Symbol:   strings.ToUpper(getString("symbol")),
		Name:     getString("name"),
		Exchange: getString("exchange"),
		Sector:   getString("sector"),
	}
}

func (x *Index) Close() error {
	return x.index.Close()
}
