package ethereum

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
)

// Fallback gas limits used when estimation is unavailable.
const (
	NativeTransferGas uint64 = params.TxGas
	TokenTransferGas  uint64 = 100_000
)

const erc20ABI = `[
	{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var parsedERC20 abi.ABI

func init() {
	var err error
	parsedERC20, err = abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(fmt.Sprintf("invalid erc20 abi: %v", err))
	}
}

// PackTransfer encodes an ERC-20 transfer(to, amount) call. The ABI packer
// reduces values modulo 2^256, so amount is range-checked first.
func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, errors.New("failed to pack transfer: negative amount")
	}
	if amount.BitLen() > 256 {
		return nil, fmt.Errorf("failed to pack transfer: %w", ErrAmountTooLarge)
	}
	data, err := parsedERC20.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer: %w", err)
	}
	return data, nil
}

// EstimateGasLimit returns the fallback gas limit for a call with data.
func EstimateGasLimit(data []byte) uint64 {
	if len(data) == 0 {
		return NativeTransferGas
	}
	return TokenTransferGas
}

// NewTransaction creates a legacy transaction.
func NewTransaction(nonce uint64, to common.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *types.Transaction {
	if value == nil {
		value = new(big.Int)
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// ValidateTransaction performs basic sanity checks before signing.
func ValidateTransaction(tx *types.Transaction) error {
	if tx == nil {
		return errors.New("transaction is nil")
	}
	if tx.To() == nil {
		return errors.New("contract creation is not supported")
	}
	if tx.Gas() == 0 {
		return errors.New("gas limit is zero")
	}
	if tx.GasPrice() == nil || tx.GasPrice().Sign() <= 0 {
		return errors.New("gas price must be positive")
	}
	if tx.Value().Sign() < 0 {
		return errors.New("value is negative")
	}
	return nil
}

// SignTransaction signs tx for chainID with key.
func SignTransaction(tx *types.Transaction, chainID *big.Int, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}
