package api

// API Client-
//
// Files:
//   types.go     - Wire shapes (JSON-RPC envelope, explorer, Ankr, Alchemy, prices)
//   base.go      - Core client functionality (client struct, newClient, GET/POST/JSON-RPC helpers)
//   explorer.go  - Etherscan-style txlist queries
//   ankr.go      - Ankr multichain balance API
//   alchemy.go   - Alchemy token balance and metadata API
//   price.go     - CoinGecko spot prices
//
// Usage:
//   client := api.NewClient(logger)                                       // from base.go
//   txs, err := client.GetTransactions(ctx, apiURL, apiKey, address)      // from explorer.go
//   assets, err := client.GetAccountBalance(ctx, ankrURL, "bsc", address) // from ankr.go
//   price, err := client.GetPrice(ctx, coingeckoURL, "ethereum")          // from price.go
