package provider

import (
	"context"
	"fmt"

	"github.com/piquette/finance-go/quote"

	"stockval/pkg/core/statement"
)

// priceKeys are tried in order against the price board. The first strictly
// positive match wins; a zero means "no trade yet", not a price.
var priceKeys = []statement.Key{
	{Category: "match", Label: "match_price"},
	{Category: "listing", Label: "ref_price"},
	{Category: "bid_ask", Label: "bid_1_price"},
	{Category: "match", Label: "close_price"},
	{Category: "match", Label: "last_price"},
}

// PriceFromBoard extracts the current price from a price board table, nil
// when no field carries a positive price.
func PriceFromBoard(t *statement.Table) *float64 {
	if t.Empty() {
		return nil
	}
	for _, key := range priceKeys {
		v := statement.Resolve(t, []statement.Key{key}, statement.Latest)
		if v != nil && *v > 0 {
			return v
		}
	}
	return nil
}

// CurrentPrice resolves the live price for a symbol, preferring the
// vendor's price board and falling back to the Yahoo quote feed.
// Vietnamese tickers live under the .VN suffix there, so both spellings
// are tried.
func (c *Client) CurrentPrice(ctx context.Context, symbol string, board *statement.Table) *float64 {
	if board == nil {
		fetched, err := c.FetchPriceBoard(ctx, symbol)
		if err != nil {
			fmt.Printf("[PROVIDER] Price board fetch failed for %s: %v\n", symbol, err)
		} else {
			board = fetched
		}
	}
	if price := PriceFromBoard(board); price != nil {
		return price
	}

	for _, candidate := range []string{symbol, symbol + ".VN"} {
		q, err := quote.Get(candidate)
		if err != nil || q == nil {
			continue
		}
		if q.RegularMarketPrice > 0 {
			p := q.RegularMarketPrice
			fmt.Printf("[PROVIDER] %s priced via quote feed as %s: %.2f\n", symbol, candidate, p)
			return &p
		}
	}
	return nil
}
