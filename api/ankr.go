package api

import (
	"context"
	"errors"
	"fmt"
)

// GetAccountBalance returns every asset Ankr reports for address on
// blockchain ("bsc", "bsc_testnet", ...). Native and token assets are both
// included; callers tell them apart by TokenType. A null result means the
// address holds nothing.
func (c *Client) GetAccountBalance(ctx context.Context, ankrURL, blockchain, address string) ([]AnkrAsset, error) {
	params := ankrParams{
		Blockchain:    blockchain,
		WalletAddress: address,
	}

	var result ankrBalanceResult
	err := c.callRPC(ctx, ankrURL, "ankr_getAccountBalance", params, &result)
	if errors.Is(err, ErrNoResult) {
		return []AnkrAsset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account balance: %w", err)
	}

	if result.Assets == nil {
		return []AnkrAsset{}, nil
	}
	return result.Assets, nil
}
