// Package balances reads the native and token balances of an address on one
// chain. Every call is a full refetch; nothing is cached.
package balances

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/harbor/api"
	"github.com/chinmay1088/harbor/chains"
	"github.com/chinmay1088/harbor/chains/ethereum"
	"github.com/chinmay1088/harbor/errs"
	"github.com/chinmay1088/harbor/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// metadataConcurrency bounds parallel alchemy_getTokenMetadata calls.
const metadataConcurrency = 8

// TokenBalance is one ERC-20 holding.
type TokenBalance struct {
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	Balance         string         `json:"balance"` // decimal, 6 places
	ContractAddress common.Address `json:"contract_address"`
	Decimals        int            `json:"decimals"`
}

// Result of one aggregation. Supported is false when the chain has no token
// source; Native is still filled in for known chains.
type Result struct {
	Native    string         `json:"native"`
	Tokens    []TokenBalance `json:"tokens"`
	Supported bool           `json:"supported"`
}

// BalanceReader reads native balances.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// TokenAPI is implemented by *api.Client.
type TokenAPI interface {
	GetAccountBalance(ctx context.Context, ankrURL, blockchain, address string) ([]api.AnkrAsset, error)
	GetTokenBalances(ctx context.Context, alchemyURL, address string) ([]api.AlchemyTokenBalance, error)
	GetTokenMetadata(ctx context.Context, alchemyURL, contract string) (*api.AlchemyTokenMetadata, error)
}

// Sources configures the token balance providers.
type Sources struct {
	AnkrURL       string
	AlchemyAPIKey string
	// AlchemyEndpoint overrides how the Alchemy URL is built from a network slug.
	AlchemyEndpoint func(network string) string
}

func (s Sources) alchemyURL(network string) string {
	if s.AlchemyEndpoint != nil {
		return s.AlchemyEndpoint(network)
	}
	return api.AlchemyURL(network, s.AlchemyAPIKey)
}

func (s Sources) hasAlchemy() bool {
	return s.AlchemyEndpoint != nil || s.AlchemyAPIKey != ""
}

// Aggregator fetches balances.
type Aggregator struct {
	registry *chains.Registry
	tokens   TokenAPI
	sources  Sources
	log      *zap.Logger
}

// NewAggregator creates an aggregator over registry.
func NewAggregator(registry *chains.Registry, tokens TokenAPI, sources Sources, log *zap.Logger) *Aggregator {
	log = logging.OrNop(log)
	return &Aggregator{
		registry: registry,
		tokens:   tokens,
		sources:  sources,
		log:      log,
	}
}

// FetchBalances reads the native balance from client and the token balances
// from the chain's token source, concurrently.
//
// Unknown chains and chains without a token source are not errors: the token
// list is empty and Supported is false. Any fetch failure yields an empty
// Result and an errs.TransientFetch error.
func (a *Aggregator) FetchBalances(ctx context.Context, client BalanceReader, address common.Address, chainID int64) (Result, error) {
	chain, err := a.registry.Lookup(chainID)
	if err != nil {
		if errors.Is(err, chains.ErrUnsupportedNetwork) {
			a.log.Debug("balances not supported", zap.Int64("chain_id", chainID))
			return Result{Tokens: []TokenBalance{}}, nil
		}
		return Result{Tokens: []TokenBalance{}}, err
	}

	supported := chain.SupportsTokens()
	if chain.TokenSource.Kind == chains.SourceAlchemy && !a.sources.hasAlchemy() {
		a.log.Warn("alchemy api key not configured, token balances disabled", zap.Int64("chain_id", chainID))
		supported = false
	}

	var (
		native string
		tokens = []TokenBalance{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if client == nil {
			return errors.New("chain client not connected")
		}
		wei, err := client.BalanceAt(gctx, address, nil)
		if err != nil {
			return fmt.Errorf("failed to get native balance: %w", err)
		}
		native = ethereum.FormatDisplay(ethereum.WeiToEther(wei))
		return nil
	})
	if supported {
		g.Go(func() error {
			var err error
			switch chain.TokenSource.Kind {
			case chains.SourceAnkr:
				tokens, err = a.fromAnkr(gctx, chain.TokenSource.Network, address)
			case chains.SourceAlchemy:
				tokens, err = a.fromAlchemy(gctx, chain.TokenSource.Network, address)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		a.log.Warn("balance fetch failed",
			zap.Int64("chain_id", chainID),
			zap.String("address", address.Hex()),
			zap.Error(err))
		return Result{Tokens: []TokenBalance{}, Supported: supported},
			errs.Wrap(errs.TransientFetch, "fetch balances", err)
	}

	a.log.Debug("balances loaded",
		zap.Int64("chain_id", chainID),
		zap.String("native", native),
		zap.Int("tokens", len(tokens)))
	return Result{Native: native, Tokens: tokens, Supported: supported}, nil
}

// fromAnkr maps the assets of one ankr_getAccountBalance call. The native
// asset is reported separately and skipped here.
func (a *Aggregator) fromAnkr(ctx context.Context, blockchain string, address common.Address) ([]TokenBalance, error) {
	assets, err := a.tokens.GetAccountBalance(ctx, a.sources.AnkrURL, blockchain, address.Hex())
	if err != nil {
		return nil, err
	}

	tokens := make([]TokenBalance, 0, len(assets))
	for _, asset := range assets {
		if strings.EqualFold(asset.TokenType, "NATIVE") || asset.ContractAddress == "" {
			continue
		}
		bal, err := decimal.NewFromString(asset.Balance)
		if err != nil {
			a.log.Debug("skipping asset with unparsable balance",
				zap.String("symbol", asset.TokenSymbol), zap.String("balance", asset.Balance))
			continue
		}
		if !bal.IsPositive() {
			continue
		}
		tokens = append(tokens, TokenBalance{
			Name:            asset.TokenName,
			Symbol:          asset.TokenSymbol,
			Balance:         ethereum.FormatDisplay(bal),
			ContractAddress: common.HexToAddress(asset.ContractAddress),
			Decimals:        int(ethereum.ResolveDecimals(asset.TokenDecimals)),
		})
	}
	return tokens, nil
}

// fromAlchemy lists raw balances, drops zeros, then resolves metadata for the
// rest concurrently. The first metadata failure fails the whole call.
func (a *Aggregator) fromAlchemy(ctx context.Context, network string, address common.Address) ([]TokenBalance, error) {
	endpoint := a.sources.alchemyURL(network)

	raw, err := a.tokens.GetTokenBalances(ctx, endpoint, address.Hex())
	if err != nil {
		return nil, err
	}

	type held struct {
		contract string
		amount   *big.Int
	}
	nonZero := make([]held, 0, len(raw))
	for _, b := range raw {
		amount, ok := parseHexQuantity(b.TokenBalance)
		if !ok || amount.Sign() <= 0 {
			continue
		}
		nonZero = append(nonZero, held{contract: b.ContractAddress, amount: amount})
	}

	resolved := make([]*TokenBalance, len(nonZero))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataConcurrency)
	for i, h := range nonZero {
		g.Go(func() error {
			meta, err := a.tokens.GetTokenMetadata(gctx, endpoint, h.contract)
			if err != nil {
				return err
			}
			scale := ethereum.ResolveDecimals(meta.Decimals)
			bal := ethereum.FromBaseUnits(h.amount, scale).Round(ethereum.DisplayPlaces)
			// dust that rounds to zero is not shown
			if !bal.IsPositive() {
				return nil
			}
			resolved[i] = &TokenBalance{
				Name:            meta.Name,
				Symbol:          meta.Symbol,
				Balance:         ethereum.FormatDisplay(bal),
				ContractAddress: common.HexToAddress(h.contract),
				Decimals:        int(scale),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tokens := make([]TokenBalance, 0, len(resolved))
	for _, t := range resolved {
		if t != nil {
			tokens = append(tokens, *t)
		}
	}
	return tokens, nil
}

// parseHexQuantity parses a 0x-prefixed hex number. Leading zeros are allowed,
// unlike hexutil.DecodeBig.
func parseHexQuantity(s string) (*big.Int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return new(big.Int), true
	}
	return new(big.Int).SetString(s, 16)
}
