package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ErrExplorer is wrapped by every error the explorer reports in its own
// status/message envelope.
var ErrExplorer = errors.New("explorer error")

// noTransactionsMessage is what Etherscan-compatible explorers answer for an
// address without history. It comes back with status "0".
const noTransactionsMessage = "no transactions found"

// GetTransactions fetches the complete normal-transaction list of address,
// newest first, from an Etherscan-compatible explorer API.
func (c *Client) GetTransactions(ctx context.Context, apiURL, apiKey, address string) ([]ExplorerTx, error) {
	query := url.Values{
		"module":     {"account"},
		"action":     {"txlist"},
		"address":    {address},
		"startblock": {"0"},
		"endblock":   {"99999999"},
		"sort":       {"desc"},
	}
	if apiKey != "" {
		query.Set("apikey", apiKey)
	}

	body, err := c.getJSON(ctx, apiURL, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	var resp explorerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status != "1" {
		if strings.EqualFold(strings.TrimSpace(resp.Message), noTransactionsMessage) {
			return []ExplorerTx{}, nil
		}
		// on errors the result member holds a human readable reason
		var reason string
		_ = json.Unmarshal(resp.Result, &reason)
		if reason == "" {
			reason = resp.Message
		}
		return nil, fmt.Errorf("%w: status %q: %s", ErrExplorer, resp.Status, reason)
	}

	var txs []ExplorerTx
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}

	c.log.Debug("fetched transactions", zap.String("address", address), zap.Int("count", len(txs)))
	return txs, nil
}
