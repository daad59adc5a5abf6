package api

import (
	"context"
	"fmt"
	"strings"
)

// AlchemyURL builds the JSON-RPC endpoint for an Alchemy network slug.
func AlchemyURL(network, apiKey string) string {
	return fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", network, apiKey)
}

// GetTokenBalances lists the ERC-20 balances Alchemy tracks for address.
// Entries Alchemy could not resolve are dropped.
func (c *Client) GetTokenBalances(ctx context.Context, alchemyURL, address string) ([]AlchemyTokenBalance, error) {
	var result alchemyBalancesResult
	params := []interface{}{address, "erc20"}
	if err := c.callRPC(ctx, alchemyURL, "alchemy_getTokenBalances", params, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch token balances: %w", err)
	}

	balances := make([]AlchemyTokenBalance, 0, len(result.TokenBalances))
	for _, b := range result.TokenBalances {
		if b.Error != nil && *b.Error != "" {
			c.log.Sugar().Debugw("skipping token balance", "contract", b.ContractAddress, "error", *b.Error)
			continue
		}
		balances = append(balances, b)
	}
	return balances, nil
}

// GetTokenMetadata returns name, symbol and decimals of an ERC-20 contract.
func (c *Client) GetTokenMetadata(ctx context.Context, alchemyURL, contract string) (*AlchemyTokenMetadata, error) {
	var meta AlchemyTokenMetadata
	if err := c.callRPC(ctx, alchemyURL, "alchemy_getTokenMetadata", []string{contract}, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for %s: %w", contract, err)
	}
	meta.Symbol = strings.TrimSpace(meta.Symbol)
	return &meta, nil
}
