package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// GetPrice fetches the current USD price for a CoinGecko coin id
func (c *Client) GetPrice(ctx context.Context, baseURL, id string) (*PriceData, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/simple/price"
	query := url.Values{
		"ids":           {id},
		"vs_currencies": {"usd"},
	}

	body, err := c.getJSON(ctx, endpoint, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price: %w", err)
	}

	var result map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if priceData, exists := result[id]; exists {
		if usdPrice, exists := priceData["usd"]; exists {
			return &PriceData{
				ID:  id,
				USD: usdPrice,
			}, nil
		}
	}

	return nil, fmt.Errorf("price not found for id: %s", id)
}
