package chains

import (
	"errors"
	"testing"
)

func TestDefaultRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		id         int64
		symbol     string
		source     SourceKind
		hasHistory bool
	}{
		{Ethereum, "ETH", SourceAlchemy, true},
		{BSC, "BNB", SourceAnkr, true},
		{BSCTestnet, "tBNB", SourceAnkr, false},
		{Polygon, "POL", SourceAlchemy, true},
		{Base, "ETH", SourceNone, false},
		{Sepolia, "ETH", SourceAlchemy, true},
	}
	for _, tt := range tests {
		c, err := r.Lookup(tt.id)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", tt.id, err)
		}
		if c.NativeSymbol != tt.symbol {
			t.Errorf("chain %d symbol = %s, want %s", tt.id, c.NativeSymbol, tt.symbol)
		}
		if c.TokenSource.Kind != tt.source {
			t.Errorf("chain %d source = %s, want %s", tt.id, c.TokenSource.Kind, tt.source)
		}
		if c.SupportsHistory() != tt.hasHistory {
			t.Errorf("chain %d SupportsHistory = %v, want %v", tt.id, c.SupportsHistory(), tt.hasHistory)
		}
	}
}

func TestRegistry_UnknownChain(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Lookup(424242)
	if !errors.Is(err, ErrUnsupportedNetwork) {
		t.Fatalf("expected ErrUnsupportedNetwork, got %v", err)
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	if _, err := NewRegistry(ChainConfig{ChainID: 1}, ChainConfig{ChainID: 1}); err == nil {
		t.Error("expected duplicate chain id error")
	}
	if _, err := NewRegistry(ChainConfig{ChainID: 0, Name: "zero"}); err == nil {
		t.Error("expected invalid chain id error")
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	all := DefaultRegistry().All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ChainID >= all[i].ChainID {
			t.Fatalf("chains not sorted: %d before %d", all[i-1].ChainID, all[i].ChainID)
		}
	}
}

func TestChainConfig_TxURL(t *testing.T) {
	c := ChainConfig{ExplorerTxURL: "https://etherscan.io/tx/%s"}
	if got := c.TxURL("0xabc"); got != "https://etherscan.io/tx/0xabc" {
		t.Errorf("TxURL = %s", got)
	}
	if got := (ChainConfig{}).TxURL("0xabc"); got != "" {
		t.Errorf("TxURL without explorer = %q, want empty", got)
	}
}

func TestRegistry_Find(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		in   string
		want int64
	}{
		{"137", Polygon},
		{"polygon", Polygon},
		{"MATIC", Polygon},
		{"op mainnet", Optimism},
		{"bnb-smart-chain", BSC},
		{"bsc_testnet", BSCTestnet},
		{" sepolia ", Sepolia},
		{"arb", Arbitrum},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := r.Find(tt.in)
			if err != nil || c.ChainID != tt.want {
				t.Errorf("Find(%q) = %d, %v; want %d", tt.in, c.ChainID, err, tt.want)
			}
		})
	}

	for _, in := range []string{"424242", "dogechain", ""} {
		if _, err := r.Find(in); !errors.Is(err, ErrUnsupportedNetwork) {
			t.Errorf("Find(%q) error = %v", in, err)
		}
	}
}
