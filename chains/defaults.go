package chains

// Well-known chain ids
const (
	Ethereum   int64 = 1
	Optimism   int64 = 10
	BSC        int64 = 56
	BSCTestnet int64 = 97
	Polygon    int64 = 137
	Base       int64 = 8453
	Arbitrum   int64 = 42161
	Sepolia    int64 = 11155111
)

// DefaultChainID is used when no chain has been selected yet.
const DefaultChainID = Ethereum

// DefaultChains returns the built-in chain table. Explorer API keys are empty
// here and filled in from the environment or config.toml.
func DefaultChains() []ChainConfig {
	return []ChainConfig{
		{
			ChainID:        Ethereum,
			Name:           "Ethereum",
			NativeSymbol:   "ETH",
			RPCURL:         "https://ethereum-rpc.publicnode.com",
			ExplorerAPIURL: "https://api.etherscan.io/api",
			ExplorerTxURL:  "https://etherscan.io/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAlchemy, Network: "eth-mainnet"},
			PriceID:        "ethereum",
			Aliases:        []string{"eth", "mainnet"},
		},
		{
			ChainID:        Optimism,
			Name:           "OP Mainnet",
			NativeSymbol:   "ETH",
			RPCURL:         "https://optimism-rpc.publicnode.com",
			ExplorerAPIURL: "https://api-optimistic.etherscan.io/api",
			ExplorerTxURL:  "https://optimistic.etherscan.io/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAlchemy, Network: "opt-mainnet"},
			PriceID:        "ethereum",
			Aliases:        []string{"optimism", "op"},
		},
		{
			ChainID:        BSC,
			Name:           "BNB Smart Chain",
			NativeSymbol:   "BNB",
			RPCURL:         "https://bsc-rpc.publicnode.com",
			ExplorerAPIURL: "https://api.bscscan.com/api",
			ExplorerTxURL:  "https://bscscan.com/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAnkr, Network: "bsc"},
			PriceID:        "binancecoin",
			Aliases:        []string{"bsc", "bnb"},
		},
		{
			// no explorer API configured for the BSC testnet
			ChainID:      BSCTestnet,
			Name:         "BNB Smart Chain Testnet",
			NativeSymbol: "tBNB",
			RPCURL:       "https://bsc-testnet-rpc.publicnode.com",
			TokenSource:  TokenSource{Kind: SourceAnkr, Network: "bsc_testnet"},
			Testnet:      true,
			Aliases:      []string{"bsc-testnet", "tbnb"},
		},
		{
			ChainID:        Polygon,
			Name:           "Polygon",
			NativeSymbol:   "POL",
			RPCURL:         "https://polygon-bor-rpc.publicnode.com",
			ExplorerAPIURL: "https://api.polygonscan.com/api",
			ExplorerTxURL:  "https://polygonscan.com/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAlchemy, Network: "polygon-mainnet"},
			PriceID:        "polygon-ecosystem-token",
			Aliases:        []string{"matic", "pol"},
		},
		{
			// connectable, but neither tokens nor history are wired for Base
			ChainID:      Base,
			Name:         "Base",
			NativeSymbol: "ETH",
			RPCURL:       "https://base-rpc.publicnode.com",
			PriceID:      "ethereum",
			Aliases:      []string{"base-mainnet"},
		},
		{
			ChainID:        Arbitrum,
			Name:           "Arbitrum One",
			NativeSymbol:   "ETH",
			RPCURL:         "https://arbitrum-one-rpc.publicnode.com",
			ExplorerAPIURL: "https://api.arbiscan.io/api",
			ExplorerTxURL:  "https://arbiscan.io/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAlchemy, Network: "arb-mainnet"},
			PriceID:        "ethereum",
			Aliases:        []string{"arbitrum", "arb"},
		},
		{
			ChainID:        Sepolia,
			Name:           "Sepolia",
			NativeSymbol:   "ETH",
			RPCURL:         "https://ethereum-sepolia.publicnode.com",
			ExplorerAPIURL: "https://api-sepolia.etherscan.io/api",
			ExplorerTxURL:  "https://sepolia.etherscan.io/tx/%s",
			TokenSource:    TokenSource{Kind: SourceAlchemy, Network: "eth-sepolia"},
			Testnet:        true,
			Aliases:        []string{"eth-sepolia"},
		},
	}
}
