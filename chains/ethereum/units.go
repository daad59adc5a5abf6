package ethereum

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the decimals of every EVM native currency.
	NativeDecimals int32 = 18
	// DisplayPlaces is the number of decimal places balances are shown with.
	DisplayPlaces int32 = 6
)

var gweiExp int32 = 9

// MaxDecimals is the largest decimals value an ERC-20 token can report.
const MaxDecimals = 255

// uint256Digits is the number of decimal digits of 2^256.
const uint256Digits = 78

// ErrAmountTooLarge is returned for amounts that do not fit in a uint256
// once scaled to base units.
var ErrAmountTooLarge = errors.New("amount too large")

// ResolveDecimals returns the decimals a token reported, or 18 when it
// reported none. A reported zero is kept.
func ResolveDecimals(d *int) int32 {
	if d == nil || *d < 0 || *d > MaxDecimals {
		return NativeDecimals
	}
	return int32(*d)
}

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a positive decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than zero")
	}
	return d, nil
}

// ToBaseUnits scales amount by 10^decimals. Amounts with more fractional
// digits than decimals are rejected rather than truncated, and so are
// amounts that do not fit in a uint256.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("invalid decimals %d", decimals)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative")
	}
	if amount.IsZero() {
		return new(big.Int), nil
	}
	// the magnitude is checked on the digit count and exponent so a short
	// input like 1e2000000000 is never expanded
	if err := checkMagnitude(amount, decimals); err != nil {
		return nil, err
	}

	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	v := scaled.BigInt()
	if v.BitLen() > 256 {
		return nil, ErrAmountTooLarge
	}
	return v, nil
}

// checkMagnitude rejects a non-zero amount whose integer part after scaling
// has more digits than a uint256, or whose fraction cannot be an integer
// after scaling because it has more digits than the coefficient.
func checkMagnitude(amount decimal.Decimal, decimals int32) error {
	digits := int64(amount.NumDigits())
	exp := int64(amount.Exponent())
	if digits+exp+int64(decimals) > uint256Digits {
		return ErrAmountTooLarge
	}
	if frac := -exp - int64(decimals); frac >= digits {
		return fmt.Errorf("amount has more than %d decimal places", decimals)
	}
	return nil
}

// FromBaseUnits divides v by 10^decimals.
func FromBaseUnits(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// EtherToWei converts a native amount to wei.
func EtherToWei(amount decimal.Decimal) (*big.Int, error) {
	return ToBaseUnits(amount, NativeDecimals)
}

// WeiToEther converts wei to the native unit.
func WeiToEther(wei *big.Int) decimal.Decimal {
	return FromBaseUnits(wei, NativeDecimals)
}

// GweiToWei converts gwei to wei, dropping anything below one wei.
func GweiToWei(gwei decimal.Decimal) (*big.Int, error) {
	if gwei.IsNegative() {
		return nil, fmt.Errorf("gas price must not be negative")
	}
	digits := int64(gwei.NumDigits())
	exp := int64(gwei.Exponent())
	if gwei.IsZero() || digits+exp+int64(gweiExp) <= 0 {
		return new(big.Int), nil
	}
	if digits+exp+int64(gweiExp) > uint256Digits {
		return nil, ErrAmountTooLarge
	}
	v := gwei.Shift(gweiExp).Truncate(0).BigInt()
	if v.BitLen() > 256 {
		return nil, ErrAmountTooLarge
	}
	return v, nil
}

// WeiToGwei converts wei to gwei.
func WeiToGwei(wei *big.Int) decimal.Decimal {
	return FromBaseUnits(wei, gweiExp)
}

// FormatDisplay rounds d to DisplayPlaces and prints it with a fixed number of places.
func FormatDisplay(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}
