// Package history reads an address's transactions from the chain's block
// explorer and provides the local filter, search and reveal view over them.
package history

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/chinmay1088/harbor/api"
	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/logging"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Record is one transaction as reported by the explorer.
type Record struct {
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     *big.Int  `json:"value"` // wei
	IsError   bool      `json:"is_error"`
	GasUsed   uint64    `json:"gas_used"`
	GasLimit  uint64    `json:"gas_limit"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is "Failed" for reverted transactions and "Success" otherwise.
func (r Record) Status() string {
	if r.IsError {
		return "Failed"
	}
	return "Success"
}

// Result of one history fetch.
type Result struct {
	Records   []Record
	Supported bool
}

// Explorer is implemented by *api.Client.
type Explorer interface {
	GetTransactions(ctx context.Context, apiURL, apiKey, address string) ([]api.ExplorerTx, error)
}

// Fetcher reads history through the explorer configured for each chain.
type Fetcher struct {
	registry *chains.Registry
	explorer Explorer
	log      *zap.Logger
}

// NewFetcher creates a fetcher.
func NewFetcher(registry *chains.Registry, explorer Explorer, log *zap.Logger) *Fetcher {
	log = logging.OrNop(log)
	return &Fetcher{registry: registry, explorer: explorer, log: log}
}

// FetchHistory returns every transaction of address, newest first. Chains
// that are unknown or have no explorer yield an empty, unsupported Result
// without any request being made.
func (f *Fetcher) FetchHistory(ctx context.Context, address common.Address, chainID int64) (Result, error) {
	chain, err := f.registry.Lookup(chainID)
	if err != nil && !errors.Is(err, chains.ErrUnsupportedNetwork) {
		return Result{Records: []Record{}}, err
	}
	if err != nil || !chain.SupportsHistory() {
		f.log.Debug("history not supported", zap.Int64("chain_id", chainID))
		return Result{Records: []Record{}}, nil
	}

	txs, err := f.explorer.GetTransactions(ctx, chain.ExplorerAPIURL, chain.ExplorerAPIKey, address.Hex())
	if err != nil {
		f.log.Warn("history fetch failed",
			zap.Int64("chain_id", chainID),
			zap.String("address", address.Hex()),
			zap.Error(err))
		return Result{Records: []Record{}, Supported: true}, errs.Wrap(errs.TransientFetch, "fetch history", err)
	}

	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		records = append(records, toRecord(tx))
	}
	f.log.Debug("history loaded", zap.Int64("chain_id", chainID), zap.Int("count", len(records)))
	return Result{Records: records, Supported: true}, nil
}

// toRecord converts explorer strings. Unparsable numbers become zero.
func toRecord(tx api.ExplorerTx) Record {
	value, ok := new(big.Int).SetString(strings.TrimSpace(tx.Value), 10)
	if !ok {
		value = new(big.Int)
	}
	gasUsed, _ := strconv.ParseUint(tx.GasUsed, 10, 64)
	gasLimit, _ := strconv.ParseUint(tx.Gas, 10, 64)

	var ts time.Time
	if secs, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
		ts = time.Unix(secs, 0)
	}

	return Record{
		Hash:      tx.Hash,
		From:      tx.From,
		To:        tx.To,
		Value:     value,
		IsError:   tx.IsError == "1",
		GasUsed:   gasUsed,
		GasLimit:  gasLimit,
		Timestamp: ts,
	}
}
