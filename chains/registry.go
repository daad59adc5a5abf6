package chains

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedNetwork is returned for chain ids that are not in the registry.
var ErrUnsupportedNetwork = errors.New("network not supported")

// SourceKind selects the API used to list token balances on a chain.
type SourceKind int

const (
	SourceNone    SourceKind = iota
	SourceAnkr               // ankr_getAccountBalance, one call returns every asset
	SourceAlchemy            // alchemy_getTokenBalances + alchemy_getTokenMetadata
)

func (k SourceKind) String() string {
	switch k {
	case SourceAnkr:
		return "ankr"
	case SourceAlchemy:
		return "alchemy"
	default:
		return "none"
	}
}

// TokenSource is the token-balance strategy of a chain. Network is the
// provider's own name for the chain ("bsc", "eth-mainnet", ...).
type TokenSource struct {
	Kind    SourceKind
	Network string
}

// ChainConfig describes one EVM network.
type ChainConfig struct {
	ChainID        int64
	Name           string
	NativeSymbol   string
	RPCURL         string
	ExplorerAPIURL string
	ExplorerAPIKey string
	ExplorerTxURL  string // printf template with a single %s for the tx hash
	TokenSource    TokenSource
	PriceID        string // CoinGecko id of the native currency, empty on testnets
	Testnet        bool
	Aliases        []string // short names accepted by Registry.Find
}

// SupportsHistory reports whether the chain has an explorer API to read history from.
func (c ChainConfig) SupportsHistory() bool {
	return c.ExplorerAPIURL != ""
}

// SupportsTokens reports whether the chain has a token-balance source.
func (c ChainConfig) SupportsTokens() bool {
	return c.TokenSource.Kind != SourceNone
}

// TxURL returns the explorer link for a transaction hash, or "" if the chain has no explorer.
func (c ChainConfig) TxURL(hash string) string {
	if c.ExplorerTxURL == "" || !strings.Contains(c.ExplorerTxURL, "%s") {
		return ""
	}
	return fmt.Sprintf(c.ExplorerTxURL, hash)
}

// Registry maps chain ids to their configuration. It is built once at startup
// and never mutated afterwards.
type Registry struct {
	chains map[int64]ChainConfig
	ids    []int64
}

// NewRegistry builds a registry from cfgs. Chain ids must be positive and unique.
func NewRegistry(cfgs ...ChainConfig) (*Registry, error) {
	r := &Registry{chains: make(map[int64]ChainConfig, len(cfgs))}
	for _, c := range cfgs {
		if c.ChainID <= 0 {
			return nil, fmt.Errorf("invalid chain id %d for %q", c.ChainID, c.Name)
		}
		if _, dup := r.chains[c.ChainID]; dup {
			return nil, fmt.Errorf("duplicate chain id %d", c.ChainID)
		}
		r.chains[c.ChainID] = c
		r.ids = append(r.ids, c.ChainID)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	return r, nil
}

// DefaultRegistry returns the registry built from DefaultChains.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultChains()...)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in chain table: %v", err))
	}
	return r
}

// Lookup returns the config for chainID or ErrUnsupportedNetwork.
func (r *Registry) Lookup(chainID int64) (ChainConfig, error) {
	c, ok := r.chains[chainID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("chain id %d: %w", chainID, ErrUnsupportedNetwork)
	}
	return c, nil
}

// All returns every chain ordered by chain id.
func (r *Registry) All() []ChainConfig {
	out := make([]ChainConfig, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.chains[id])
	}
	return out
}

// Find resolves a chain id ("137"), a name ("Polygon") or an alias ("matic"),
// ignoring case, spaces and dashes.
func (r *Registry) Find(nameOrID string) (ChainConfig, error) {
	if id, err := strconv.ParseInt(strings.TrimSpace(nameOrID), 10, 64); err == nil {
		return r.Lookup(id)
	}

	want := normalizeName(nameOrID)
	for _, id := range r.ids {
		c := r.chains[id]
		if normalizeName(c.Name) == want {
			return c, nil
		}
		for _, alias := range c.Aliases {
			if normalizeName(alias) == want {
				return c, nil
			}
		}
	}
	return ChainConfig{}, fmt.Errorf("chain %q: %w", nameOrID, ErrUnsupportedNetwork)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
