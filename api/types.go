package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceData represents cryptocurrency price information
type PriceData struct {
	ID  string          `json:"id"`
	USD decimal.Decimal `json:"usd"`
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      int         `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is the error member of a JSON-RPC response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// ExplorerTx is one entry of an Etherscan-style txlist response. All numeric
// fields arrive as decimal strings.
type ExplorerTx struct {
	BlockNumber      string `json:"blockNumber"`
	TimeStamp        string `json:"timeStamp"`
	Hash             string `json:"hash"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	GasUsed          string `json:"gasUsed"`
	IsError          string `json:"isError"`
	TxReceiptStatus  string `json:"txreceipt_status"`
	ContractAddress  string `json:"contractAddress"`
	FunctionName     string `json:"functionName"`
	Input            string `json:"input"`
	Nonce            string `json:"nonce"`
	Confirmations    string `json:"confirmations"`
	CumulativeGasUse string `json:"cumulativeGasUsed"`
}

type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// AnkrAsset is one asset returned by ankr_getAccountBalance
type AnkrAsset struct {
	Blockchain        string `json:"blockchain"`
	TokenName         string `json:"tokenName"`
	TokenSymbol       string `json:"tokenSymbol"`
	TokenDecimals     *int   `json:"tokenDecimals"`
	TokenType         string `json:"tokenType"`
	ContractAddress   string `json:"contractAddress"`
	HolderAddress     string `json:"holderAddress"`
	Balance           string `json:"balance"`
	BalanceRawInteger string `json:"balanceRawInteger"`
	BalanceUsd        string `json:"balanceUsd"`
}

type ankrParams struct {
	Blockchain    string `json:"blockchain"`
	WalletAddress string `json:"walletAddress"`
}

type ankrBalanceResult struct {
	TotalBalanceUsd string      `json:"totalBalanceUsd"`
	Assets          []AnkrAsset `json:"assets"`
}

// AlchemyTokenBalance is one entry of alchemy_getTokenBalances. TokenBalance
// is a hex quantity in the token's base units.
type AlchemyTokenBalance struct {
	ContractAddress string  `json:"contractAddress"`
	TokenBalance    string  `json:"tokenBalance"`
	Error           *string `json:"error"`
}

type alchemyBalancesResult struct {
	Address       string                `json:"address"`
	TokenBalances []AlchemyTokenBalance `json:"tokenBalances"`
}

// AlchemyTokenMetadata is the result of alchemy_getTokenMetadata. Decimals
// is nil when the contract does not expose it.
type AlchemyTokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals *int   `json:"decimals"`
	Logo     string `json:"logo"`
}
